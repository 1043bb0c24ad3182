package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"obi-site/internal/container"
	"obi-site/internal/datepicker"
	"obi-site/internal/domain"
	"obi-site/internal/form"
	"obi-site/internal/metrics"
	"obi-site/internal/middleware"
	"obi-site/internal/notify"
	"obi-site/internal/service"
	"obi-site/pkg/errors"
	"obi-site/pkg/logger"
)

const maxEnquiryBody = 64 << 10

var (
	// ExpiredToast is shown when a form token no longer verifies
	ExpiredToast = notify.Failure("Form Expired", "Please submit the form again.")

	// AlreadySubmittedToast answers a replay of a form whose enquiry is stored
	AlreadySubmittedToast = notify.Success("Already Submitted", "We have your enquiry and will get back to you within 24 hours.")

	// InFlightToast answers a second submit while the first is still running
	InFlightToast = notify.Success("Still Submitting", "Your enquiry is being sent, please wait.")
)

// EnquiryHandler serves the enquiry JSON API used by the page script
type EnquiryHandler struct {
	container *container.Container
	logger    *logger.Logger
}

// NewEnquiryHandler creates a new enquiry handler
func NewEnquiryHandler(container *container.Container) *EnquiryHandler {
	return &EnquiryHandler{
		container: container,
		logger:    container.GetLogger().Named("enquiry_handler"),
	}
}

// FormInfo describes a fresh form instance
type FormInfo struct {
	*service.FormToken
	EventTypes  []domain.EventTypeOption `json:"event_types"`
	DatePicker  DatePickerInfo           `json:"date_picker"`
	SubmitLabel string                   `json:"submit_label"`
}

// DatePickerInfo holds the picker bounds
type DatePickerInfo struct {
	Placeholder string `json:"placeholder"`
	Today       string `json:"today"`
	FromMonth   string `json:"from_month"`
}

// SubmitRequest is the body of POST /api/enquiries
type SubmitRequest struct {
	FormToken string `json:"form_token"`
	domain.EnquiryInput
}

// SubmitResponse is the result of POST /api/enquiries
type SubmitResponse struct {
	Success       bool               `json:"success"`
	Reset         bool               `json:"reset,omitempty"`
	Toast         *notify.Toast      `json:"toast,omitempty"`
	NextFormToken *service.FormToken `json:"next_form_token,omitempty"`
	Error         *errors.ErrorBody  `json:"error,omitempty"`
}

// DatePickerResponse is the data of GET /api/date-picker
type DatePickerResponse struct {
	Weekdays []string              `json:"weekdays"`
	Value    string                `json:"value"`
	Display  string                `json:"display"`
	Month    *datepicker.MonthView `json:"month"`
}

// GetForm handles GET /api/enquiries/form
func (h *EnquiryHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	token, err := h.container.Services.FormTokens.Issue()
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	picker := datepicker.New(h.container.Clock, h.container.Location)
	respondJSON(w, http.StatusOK, DataResponse{
		Success: true,
		Data: FormInfo{
			FormToken:  token,
			EventTypes: domain.EventTypeOptions,
			DatePicker: DatePickerInfo{
				Placeholder: datepicker.Placeholder,
				Today:       picker.Today().Format(domain.DateLayout),
				FromMonth:   picker.FromMonth().Format(datepicker.MonthLayout),
			},
			SubmitLabel: form.LabelIdle,
		},
	})
}

// Submit handles POST /api/enquiries
func (h *EnquiryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	log := middleware.GetLogger(ctx, h.logger)

	var req SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEnquiryBody)).Decode(&req); err != nil {
		respondError(w, r, errors.NewValidationError("Invalid request body", nil), h.logger)
		return
	}

	formID, err := h.container.Services.FormTokens.Verify(req.FormToken)
	if err != nil {
		metrics.RecordSubmission("expired")
		body := errors.NewErrorResponse(errors.As(err), requestID).Error
		resp := SubmitResponse{Success: false, Toast: &ExpiredToast, Error: &body}
		if next, ierr := h.container.Services.FormTokens.Issue(); ierr == nil {
			resp.NextFormToken = next
		}
		respondJSON(w, http.StatusBadRequest, resp)
		return
	}

	sub := submitEnquiry(ctx, h.container, log, formID, req.EnquiryInput)

	switch sub.result {
	case form.ResultSubmitted:
		resp := SubmitResponse{Success: true, Reset: true, Toast: sub.toast()}
		next, err := h.container.Services.FormTokens.Issue()
		if err != nil {
			log.WithError(err).Error("Failed to issue next form token")
		} else {
			resp.NextFormToken = next
		}
		respondJSON(w, http.StatusCreated, resp)

	case form.ResultInvalid:
		respondError(w, r, sub.err, h.logger)

	case form.ResultIgnored:
		body := errors.NewErrorResponse(errors.As(sub.err), requestID).Error
		resp := SubmitResponse{Success: false, Reset: sub.alreadySubmitted, Toast: sub.toast(), Error: &body}
		if sub.alreadySubmitted {
			if next, err := h.container.Services.FormTokens.Issue(); err == nil {
				resp.NextFormToken = next
			}
		}
		respondJSON(w, http.StatusConflict, resp)

	default:
		appErr := errors.NewExternalError("Submission failed", sub.err)
		body := errors.NewErrorResponse(appErr, requestID).Error
		respondJSON(w, appErr.StatusCode, SubmitResponse{Success: false, Toast: sub.toast(), Error: &body})
	}
}

// DatePicker handles GET /api/date-picker?month=YYYY-MM&selected=YYYY-MM-DD
func (h *EnquiryHandler) DatePicker(w http.ResponseWriter, r *http.Request) {
	picker := datepicker.New(h.container.Clock, h.container.Location)
	q := r.URL.Query()

	if err := picker.SelectString(q.Get("selected")); err != nil {
		respondError(w, r, errors.NewValidationError("Invalid selected date", map[string]interface{}{
			"selected": err.Error(),
		}), h.logger)
		return
	}

	month, err := picker.ParseMonth(q.Get("month"))
	if err != nil {
		respondError(w, r, errors.NewValidationError("Invalid month", map[string]interface{}{
			"month": err.Error(),
		}), h.logger)
		return
	}

	view, err := picker.Month(month)
	if err != nil {
		respondError(w, r, errors.NewValidationError("Invalid month", map[string]interface{}{
			"month": err.Error(),
		}), h.logger)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{
		Success: true,
		Data: DatePickerResponse{
			Weekdays: datepicker.Weekdays,
			Value:    picker.Value(),
			Display:  picker.Display(),
			Month:    view,
		},
	})
}

// submission is the outcome of one enquiry POST
type submission struct {
	form             *form.EnquiryForm
	result           form.Result
	toasts           []notify.Toast
	err              error
	alreadySubmitted bool
}

// toast returns the toast raised by the submission, if any
func (s submission) toast() *notify.Toast {
	if len(s.toasts) == 0 {
		return nil
	}
	t := s.toasts[len(s.toasts)-1]
	return &t
}

// submitEnquiry runs the form workflow for one request against the enquiry service
func submitEnquiry(ctx context.Context, c *container.Container, log *logger.Logger, formID string, in domain.EnquiryInput) submission {
	center := notify.NewCenter()
	f := form.New(c.Clock, c.Location, center, log)
	f.SetValues(in)

	result, err := f.Submit(ctx, form.SubmitterFunc(func(ctx context.Context, e *domain.Enquiry) error {
		return c.Services.Enquiries.Submit(ctx, formID, e)
	}))
	metrics.RecordSubmission(result.String())

	sub := submission{form: f, result: result, toasts: center.Drain(), err: err}
	if result == form.ResultIgnored {
		// The form is cleared when the enquiry is already stored so it is not
		// sent again.
		if service.IsAlreadySubmitted(err) {
			sub.alreadySubmitted = true
			f.Reset()
			sub.toasts = append(sub.toasts, AlreadySubmittedToast)
		} else {
			sub.toasts = append(sub.toasts, InFlightToast)
		}
	}
	return sub
}
