package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obi-site/internal/domain"
	"obi-site/pkg/errors"
	"obi-site/pkg/logger"
)

type fakeRepo struct {
	mu       sync.Mutex
	inserted []*domain.Enquiry
	err      error
	started  chan struct{}
	block    chan struct{}
}

func (f *fakeRepo) Insert(ctx context.Context, e *domain.Enquiry) error {
	if f.block != nil {
		f.started <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, e)
	return nil
}

func (f *fakeRepo) Health(ctx context.Context) error { return f.err }
func (f *fakeRepo) Backend() string                  { return "fake" }

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeListener struct {
	mu     sync.Mutex
	events []*domain.EnquiryCreatedEvent
	err    error
}

func (f *fakeListener) Name() string { return "fake" }

func (f *fakeListener) EnquiryCreated(ctx context.Context, event *domain.EnquiryCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func testEnquiry() *domain.Enquiry {
	return &domain.Enquiry{
		Name:      "Asha Rao",
		Phone:     "9876543210",
		Email:     "asha@example.com",
		EventType: domain.EventTypeCorporate,
		EventDate: "2026-10-20",
	}
}

func TestEnquiryService_Submit(t *testing.T) {
	repo := &fakeRepo{}
	listener := &fakeListener{}
	svc := NewEnquiryService(repo, NewMemorySubmissionGuard(), logger.NewNop(), listener)

	require.NoError(t, svc.Submit(context.Background(), "form-1", testEnquiry()))
	require.NoError(t, svc.Wait(context.Background()))

	assert.Equal(t, 1, repo.count())
	require.Len(t, listener.events, 1)
	assert.Equal(t, "form-1", listener.events[0].FormID)
	assert.Equal(t, "Asha Rao", listener.events[0].Enquiry.Name)
	assert.NotEmpty(t, listener.events[0].EventID)

	err := svc.Submit(context.Background(), "form-1", testEnquiry())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict), "a stored form cannot be replayed")
	assert.Equal(t, 1, repo.count())
}

func TestEnquiryService_StoreFailure(t *testing.T) {
	repo := &fakeRepo{err: stderrors.New("401 invalid api key")}
	listener := &fakeListener{}
	svc := NewEnquiryService(repo, NewMemorySubmissionGuard(), logger.NewNop(), listener)

	err := svc.Submit(context.Background(), "form-1", testEnquiry())
	require.Error(t, err)
	appErr := errors.As(err)
	assert.Equal(t, errors.ErrorTypeExternal, appErr.Type)
	assert.ErrorIs(t, err, repo.err)

	require.NoError(t, svc.Wait(context.Background()))
	assert.Empty(t, listener.events, "listeners only hear about stored enquiries")

	repo.err = nil
	require.NoError(t, svc.Submit(context.Background(), "form-1", testEnquiry()), "the same form can be retried after a failure")
}

func TestEnquiryService_ConcurrentSameForm(t *testing.T) {
	repo := &fakeRepo{started: make(chan struct{}, 1), block: make(chan struct{})}
	svc := NewEnquiryService(repo, NewMemorySubmissionGuard(), logger.NewNop())

	first := make(chan error, 1)
	go func() { first <- svc.Submit(context.Background(), "form-1", testEnquiry()) }()

	select {
	case <-repo.started:
	case <-time.After(time.Second):
		t.Fatal("first submission never reached the store")
	}

	err := svc.Submit(context.Background(), "form-1", testEnquiry())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	close(repo.block)
	require.NoError(t, <-first)
	assert.Equal(t, 1, repo.count())
}

func TestEnquiryService_ListenerFailureIgnored(t *testing.T) {
	listener := &fakeListener{err: stderrors.New("broker down")}
	svc := NewEnquiryService(&fakeRepo{}, NewMemorySubmissionGuard(), logger.NewNop(), listener)

	require.NoError(t, svc.Submit(context.Background(), "form-1", testEnquiry()))
	require.NoError(t, svc.Wait(context.Background()))
	assert.Len(t, listener.events, 1)
}

func TestEnquiryService_HealthAndBackend(t *testing.T) {
	svc := NewEnquiryService(&fakeRepo{}, NewMemorySubmissionGuard(), logger.NewNop())
	assert.NoError(t, svc.Health(context.Background()))
	assert.Equal(t, "fake", svc.Backend())
}

// --- Alerters ---

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramAlerter(t *testing.T) {
	sender := &fakeSender{}
	alerter := &TelegramAlerter{bot: sender, chatID: -100123}

	msg := "Around 40 guests"
	enquiry := testEnquiry()
	enquiry.Message = &msg

	require.NoError(t, alerter.EnquiryCreated(context.Background(), &domain.EnquiryCreatedEvent{Enquiry: *enquiry}))
	require.Len(t, sender.sent, 1)

	cfg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100123), cfg.ChatID)
	assert.Contains(t, cfg.Text, "Name: Asha Rao")
	assert.Contains(t, cfg.Text, "Event: Corporate Event")
	assert.Contains(t, cfg.Text, "Date: 2026-10-20")
	assert.Contains(t, cfg.Text, "Around 40 guests")
	assert.Equal(t, "telegram", alerter.Name())
}

func TestTelegramAlerter_Errors(t *testing.T) {
	alerter := &TelegramAlerter{bot: &fakeSender{err: stderrors.New("chat not found")}, chatID: 1}
	err := alerter.EnquiryCreated(context.Background(), &domain.EnquiryCreatedEvent{Enquiry: *testEnquiry()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, alerter.EnquiryCreated(ctx, &domain.EnquiryCreatedEvent{}), context.Canceled)
}

type fakePublisher struct {
	key     string
	payload any
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	f.key = routingKey
	f.payload = payload
	return nil
}

func TestBrokerAlerter(t *testing.T) {
	pub := &fakePublisher{}
	alerter := NewBrokerAlerter(pub)

	event := &domain.EnquiryCreatedEvent{EventID: "e1", FormID: "f1", Enquiry: *testEnquiry()}
	require.NoError(t, alerter.EnquiryCreated(context.Background(), event))
	assert.Equal(t, domain.RoutingKeyEnquiryCreated, pub.key)
	assert.Same(t, event, pub.payload)
	assert.Equal(t, "amqp", alerter.Name())
}
