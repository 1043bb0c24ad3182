// Package form holds the state of one enquiry form instance and its submit flow.
package form

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"obi-site/internal/datepicker"
	"obi-site/internal/domain"
	"obi-site/internal/notify"
	"obi-site/pkg/errors"
	"obi-site/pkg/logger"
)

// Button labels
const (
	LabelIdle       = "Submit Enquiry"
	LabelSubmitting = "Submitting..."
)

// Toasts shown after a submission
var (
	SuccessToast = notify.Success("Enquiry Submitted!", "We'll get back to you within 24 hours.")
	FailureToast = notify.Failure("Submission Failed", "Please try again or contact us directly.")
)

// ErrSubmitting is returned when Submit is called while a submission is in flight
var ErrSubmitting = stderrors.New("submission already in progress")

// Result of a Submit call
type Result int

const (
	// ResultIgnored means nothing happened because a submission was in flight
	ResultIgnored Result = iota
	// ResultInvalid means a required field was missing; the store was not called
	ResultInvalid
	// ResultFailed means the store rejected the insert
	ResultFailed
	// ResultSubmitted means the enquiry was stored and the form cleared
	ResultSubmitted
)

func (r Result) String() string {
	switch r {
	case ResultInvalid:
		return "invalid"
	case ResultFailed:
		return "failed"
	case ResultSubmitted:
		return "submitted"
	default:
		return "ignored"
	}
}

// Submitter persists a built enquiry
type Submitter interface {
	SubmitEnquiry(ctx context.Context, enquiry *domain.Enquiry) error
}

// SubmitterFunc adapts a function to Submitter
type SubmitterFunc func(ctx context.Context, enquiry *domain.Enquiry) error

// SubmitEnquiry calls f
func (f SubmitterFunc) SubmitEnquiry(ctx context.Context, enquiry *domain.Enquiry) error {
	return f(ctx, enquiry)
}

// EnquiryForm is one rendered enquiry form
type EnquiryForm struct {
	mu          sync.Mutex
	values      domain.EnquiryInput
	fieldErrors map[string]interface{}

	submitting atomic.Bool
	picker     *datepicker.Picker
	notifier   notify.Notifier
	log        *logger.Logger
}

// New creates an empty form. clock and loc drive the date picker and the
// default event date.
func New(clock datepicker.Clock, loc *time.Location, notifier notify.Notifier, log *logger.Logger) *EnquiryForm {
	if notifier == nil {
		notifier = notify.NewCenter()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &EnquiryForm{
		picker:   datepicker.New(clock, loc),
		notifier: notifier,
		log:      log,
	}
}

// Picker returns the event date picker
func (f *EnquiryForm) Picker() *datepicker.Picker {
	return f.picker
}

// SetValues replaces every field with the submitted values
func (f *EnquiryForm) SetValues(in domain.EnquiryInput) {
	f.mu.Lock()
	f.values = in
	f.mu.Unlock()

	if err := f.picker.SelectString(in.EventDate); err != nil {
		// Keep the raw value so validation reports it.
		f.picker.Clear()
	}
}

// SetEventType changes the event type selection
func (f *EnquiryForm) SetEventType(t string) {
	f.mu.Lock()
	f.values.EventType = t
	f.mu.Unlock()
}

// Values returns the current field values. A date chosen in the picker takes
// precedence over the raw date value.
func (f *EnquiryForm) Values() domain.EnquiryInput {
	f.mu.Lock()
	in := f.values
	f.mu.Unlock()

	if v := f.picker.Value(); v != "" {
		in.EventDate = v
	}
	return in
}

// FieldErrors returns the errors from the last invalid submission
func (f *EnquiryForm) FieldErrors() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrors
}

// Submitting reports whether a submission is in flight
func (f *EnquiryForm) Submitting() bool {
	return f.submitting.Load()
}

// SubmitDisabled reports whether the submit control is disabled
func (f *EnquiryForm) SubmitDisabled() bool {
	return f.Submitting()
}

// SubmitLabel is the submit control's text
func (f *EnquiryForm) SubmitLabel() string {
	if f.Submitting() {
		return LabelSubmitting
	}
	return LabelIdle
}

// Reset clears every field, the event type and the date selection
func (f *EnquiryForm) Reset() {
	f.mu.Lock()
	f.values = domain.EnquiryInput{}
	f.fieldErrors = nil
	f.mu.Unlock()
	f.picker.Clear()
	f.picker.Close()
}

// Submit runs one submission against s.
//
// Only one submission runs at a time; a call made while another is in flight
// returns ErrSubmitting and does nothing. A conflict from s is returned as is
// with ResultIgnored and shows no toast. On success the form is cleared and
// SuccessToast shown. On a store failure FailureToast is shown and the values
// are kept. The submitting state is always left before returning.
func (f *EnquiryForm) Submit(ctx context.Context, s Submitter) (Result, error) {
	if !f.submitting.CompareAndSwap(false, true) {
		return ResultIgnored, ErrSubmitting
	}
	defer f.submitting.Store(false)

	enquiry, err := domain.BuildEnquiry(f.Values(), f.picker.Today())
	if err != nil {
		f.mu.Lock()
		f.fieldErrors = errors.As(err).Details
		f.mu.Unlock()
		return ResultInvalid, err
	}

	f.mu.Lock()
	f.fieldErrors = nil
	f.mu.Unlock()

	if err := s.SubmitEnquiry(ctx, enquiry); err != nil {
		if errors.IsType(err, errors.ErrorTypeConflict) {
			return ResultIgnored, err
		}
		f.log.WithError(err).Error("Error submitting enquiry")
		f.notifier.Show(FailureToast)
		return ResultFailed, err
	}

	f.notifier.Show(SuccessToast)
	f.Reset()
	return ResultSubmitted, nil
}
