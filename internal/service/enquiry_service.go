package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"obi-site/internal/domain"
	"obi-site/internal/metrics"
	"obi-site/internal/repository"
	"obi-site/pkg/errors"
	"obi-site/pkg/logger"
)

const alertTimeout = 10 * time.Second

// EnquiryListener is told about every stored enquiry. Listener failures are
// logged and never affect the submission.
type EnquiryListener interface {
	Name() string
	EnquiryCreated(ctx context.Context, event *domain.EnquiryCreatedEvent) error
}

// EnquiryService stores validated enquiries for one form instance at a time
type EnquiryService struct {
	repo      repository.EnquiryRepository
	guard     SubmissionGuard
	listeners []EnquiryListener
	logger    *logger.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewEnquiryService creates the service
func NewEnquiryService(repo repository.EnquiryRepository, guard SubmissionGuard, logger *logger.Logger, listeners ...EnquiryListener) *EnquiryService {
	return &EnquiryService{
		repo:      repo,
		guard:     guard,
		listeners: listeners,
		logger:    logger.Named("enquiry_service"),
		now:       time.Now,
	}
}

// Submit stores the enquiry for formID. A form instance that is already in
// flight or already stored gets a conflict error; a store failure becomes an
// external error.
func (s *EnquiryService) Submit(ctx context.Context, formID string, enquiry *domain.Enquiry) error {
	release, err := s.guard.Acquire(ctx, formID)
	if err != nil {
		return err
	}
	defer release()

	log := s.logger.WithFields(map[string]interface{}{
		"form_id":    formID,
		"backend":    s.repo.Backend(),
		"event_type": string(enquiry.EventType),
	})

	start := time.Now()
	err = s.repo.Insert(ctx, enquiry)
	duration := time.Since(start)
	metrics.RecordStoreInsert(s.repo.Backend(), duration, err)
	if err != nil {
		log.WithError(err).Error("Failed to store enquiry")
		return errors.NewExternalError("Submission failed", err)
	}

	if err := s.guard.MarkSubmitted(ctx, formID); err != nil {
		log.WithError(err).Warn("Failed to mark form as submitted")
	}

	metrics.RecordEnquiry(string(enquiry.EventType))
	log.WithField("duration", duration).Info("Enquiry stored")

	s.dispatch(&domain.EnquiryCreatedEvent{
		EventID:    uuid.NewString(),
		FormID:     formID,
		OccurredAt: s.now().UTC(),
		Enquiry:    *enquiry,
	})
	return nil
}

// dispatch notifies listeners in the background
func (s *EnquiryService) dispatch(event *domain.EnquiryCreatedEvent) {
	for _, l := range s.listeners {
		s.wg.Add(1)
		go func(l EnquiryListener) {
			defer s.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
			defer cancel()

			err := l.EnquiryCreated(ctx, event)
			metrics.RecordAlert(l.Name(), err)
			if err != nil {
				s.logger.WithError(err).WithFields(map[string]interface{}{
					"listener": l.Name(),
					"form_id":  event.FormID,
				}).Warn("Enquiry listener failed")
			}
		}(l)
	}
}

// Health checks the record store
func (s *EnquiryService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

// Backend names the record store in use
func (s *EnquiryService) Backend() string {
	return s.repo.Backend()
}

// Wait blocks until pending listener calls finish or ctx is done
func (s *EnquiryService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
