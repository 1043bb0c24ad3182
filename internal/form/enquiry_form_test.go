package form

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obi-site/internal/domain"
	"obi-site/internal/notify"
	"obi-site/pkg/errors"
)

func clock() time.Time {
	return time.Date(2026, 10, 18, 11, 0, 0, 0, time.UTC)
}

func ashaInput() domain.EnquiryInput {
	return domain.EnquiryInput{
		Name:      "Asha Rao",
		Phone:     "+91 98765 43210",
		Email:     "asha@example.com",
		EventType: "birthday",
	}
}

type recordingSubmitter struct {
	mu       sync.Mutex
	received []*domain.Enquiry
	err      error
}

func (r *recordingSubmitter) SubmitEnquiry(ctx context.Context, e *domain.Enquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, e)
	return r.err
}

func newForm() (*EnquiryForm, *notify.Center) {
	center := notify.NewCenter()
	return New(clock, time.UTC, center, nil), center
}

func TestSubmit_SuccessClearsForm(t *testing.T) {
	f, center := newForm()
	f.SetValues(ashaInput())
	store := &recordingSubmitter{}

	result, err := f.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, ResultSubmitted, result)

	require.Len(t, store.received, 1)
	got := store.received[0]
	assert.Equal(t, &domain.Enquiry{
		Name:      "Asha Rao",
		Phone:     "+91 98765 43210",
		Email:     "asha@example.com",
		EventType: domain.EventTypeBirthday,
		EventDate: "2026-10-18",
		Message:   nil,
	}, got)

	assert.True(t, f.Values().IsZero(), "fields cleared")
	assert.Equal(t, "", f.Values().EventType, "event type reset to empty")
	assert.Equal(t, "", f.Picker().Value())
	assert.Equal(t, []notify.Toast{SuccessToast}, center.Drain(), "success shown exactly once")
	assert.False(t, f.Submitting())
	assert.Equal(t, LabelIdle, f.SubmitLabel())
}

func TestSubmit_FailureKeepsValues(t *testing.T) {
	f, center := newForm()
	in := ashaInput()
	in.Message = "Need a projector"
	in.EventDate = "2026-11-01"
	f.SetValues(in)
	store := &recordingSubmitter{err: stderrors.New("connection reset by peer")}

	result, err := f.Submit(context.Background(), store)
	require.Error(t, err)
	assert.Equal(t, ResultFailed, result)

	assert.Equal(t, in, f.Values(), "values preserved unchanged")
	assert.Equal(t, "2026-11-01", f.Picker().Value())

	toasts := center.Drain()
	require.Len(t, toasts, 1, "failure shown exactly once")
	assert.Equal(t, FailureToast, toasts[0])
	assert.True(t, toasts[0].Destructive())

	assert.False(t, f.Submitting(), "submitting indicator back to idle")
	assert.False(t, f.SubmitDisabled())
}

func TestSubmit_InvalidDoesNotCallStore(t *testing.T) {
	f, center := newForm()
	in := ashaInput()
	in.EventType = ""
	f.SetValues(in)
	store := &recordingSubmitter{}

	result, err := f.Submit(context.Background(), store)
	assert.Equal(t, ResultInvalid, result)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Empty(t, store.received)
	assert.Zero(t, center.Len())
	assert.Contains(t, f.FieldErrors(), "event_type")
	assert.Equal(t, in, f.Values())
}

func TestSubmit_PastDateRejected(t *testing.T) {
	f, _ := newForm()
	in := ashaInput()
	in.EventDate = "2026-10-01"
	f.SetValues(in)

	assert.Equal(t, "", f.Picker().Value(), "picker refuses past days")

	result, err := f.Submit(context.Background(), &recordingSubmitter{})
	assert.Equal(t, ResultInvalid, result)
	require.Error(t, err)
	assert.Contains(t, f.FieldErrors(), "event_date")
}

func TestSubmit_ReentrantCallIsIgnored(t *testing.T) {
	f, center := newForm()
	f.SetValues(ashaInput())

	release := make(chan struct{})
	entered := make(chan struct{})
	var calls int32
	slow := SubmitterFunc(func(ctx context.Context, e *domain.Enquiry) error {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-release
		return nil
	})

	done := make(chan Result)
	go func() {
		r, _ := f.Submit(context.Background(), slow)
		done <- r
	}()
	<-entered

	assert.True(t, f.Submitting())
	assert.True(t, f.SubmitDisabled())
	assert.Equal(t, LabelSubmitting, f.SubmitLabel())

	result, err := f.Submit(context.Background(), slow)
	assert.Equal(t, ResultIgnored, result)
	assert.ErrorIs(t, err, ErrSubmitting)

	close(release)
	assert.Equal(t, ResultSubmitted, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no second concurrent insert")
	assert.Len(t, center.Drain(), 1)
	assert.False(t, f.Submitting())
}

func TestSubmit_ConflictFromStoreIsIgnored(t *testing.T) {
	f, center := newForm()
	f.SetValues(ashaInput())
	conflict := errors.NewConflictError("in flight")
	store := &recordingSubmitter{err: conflict}

	result, err := f.Submit(context.Background(), store)
	assert.Equal(t, ResultIgnored, result)
	assert.Same(t, conflict, err)
	assert.Zero(t, center.Len())
	assert.Equal(t, ashaInput(), f.Values())
}

func TestSubmit_CanResubmitAfterFailure(t *testing.T) {
	f, center := newForm()
	f.SetValues(ashaInput())
	store := &recordingSubmitter{err: stderrors.New("503")}

	_, err := f.Submit(context.Background(), store)
	require.Error(t, err)

	store.err = nil
	result, err := f.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, ResultSubmitted, result)
	assert.Len(t, store.received, 2)
	assert.Equal(t, []notify.Toast{FailureToast, SuccessToast}, center.Drain())
}

func TestSetEventType(t *testing.T) {
	f, _ := newForm()
	f.SetEventType("wedding")
	assert.Equal(t, "wedding", f.Values().EventType)
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "ignored", ResultIgnored.String())
	assert.Equal(t, "invalid", ResultInvalid.String())
	assert.Equal(t, "failed", ResultFailed.String())
	assert.Equal(t, "submitted", ResultSubmitted.String())
}
