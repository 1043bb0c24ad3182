package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obi-site/pkg/errors"
)

var today = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func validInput() EnquiryInput {
	return EnquiryInput{
		Name:      "Asha Rao",
		Phone:     "+91 98765 43210",
		Email:     "asha@example.com",
		EventType: "birthday",
	}
}

func TestBuildEnquiry_DefaultsDateAndMessage(t *testing.T) {
	enquiry, err := BuildEnquiry(validInput(), today)
	require.NoError(t, err)

	assert.Equal(t, "Asha Rao", enquiry.Name)
	assert.Equal(t, "+91 98765 43210", enquiry.Phone)
	assert.Equal(t, "asha@example.com", enquiry.Email)
	assert.Equal(t, EventTypeBirthday, enquiry.EventType)
	assert.Equal(t, "2026-10-18", enquiry.EventDate)
	assert.Nil(t, enquiry.Message)
}

func TestBuildEnquiry_WireFormat(t *testing.T) {
	enquiry, err := BuildEnquiry(validInput(), today)
	require.NoError(t, err)

	raw, err := json.Marshal(enquiry)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Asha Rao",
		"phone": "+91 98765 43210",
		"email": "asha@example.com",
		"event_type": "birthday",
		"event_date": "2026-10-18",
		"message": null
	}`, string(raw))
}

func TestBuildEnquiry_BlankMessageIsAbsent(t *testing.T) {
	for _, msg := range []string{"", "   ", "\n\t"} {
		in := validInput()
		in.Message = msg
		enquiry, err := BuildEnquiry(in, today)
		require.NoError(t, err)
		assert.Nil(t, enquiry.Message, "message %q", msg)
	}
}

func TestBuildEnquiry_KeepsChosenDateAndMessage(t *testing.T) {
	in := validInput()
	in.EventDate = "2026-12-24"
	in.Message = "Around 40 guests, evening slot"

	enquiry, err := BuildEnquiry(in, today)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-24", enquiry.EventDate)
	require.NotNil(t, enquiry.Message)
	assert.Equal(t, "Around 40 guests, evening slot", *enquiry.Message)
}

func TestBuildEnquiry_TrimsTextFields(t *testing.T) {
	in := validInput()
	in.Name = "  Asha Rao "
	in.Email = " asha@example.com\t"
	in.Message = "\n  Around 40 guests\n\n"

	enquiry, err := BuildEnquiry(in, today)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", enquiry.Name)
	assert.Equal(t, "asha@example.com", enquiry.Email)
	require.NotNil(t, enquiry.Message)
	assert.Equal(t, "Around 40 guests", *enquiry.Message)
}

func TestBuildEnquiry_TodayIsAllowed(t *testing.T) {
	in := validInput()
	in.EventDate = "2026-10-18"

	enquiry, err := BuildEnquiry(in, today)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", enquiry.EventDate)
}

func TestBuildEnquiry_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *EnquiryInput)
		field  string
	}{
		{name: "missing name", mutate: func(in *EnquiryInput) { in.Name = "  " }, field: "name"},
		{name: "missing phone", mutate: func(in *EnquiryInput) { in.Phone = "" }, field: "phone"},
		{name: "missing email", mutate: func(in *EnquiryInput) { in.Email = "" }, field: "email"},
		{name: "malformed email", mutate: func(in *EnquiryInput) { in.Email = "asha.example.com" }, field: "email"},
		{name: "missing event type", mutate: func(in *EnquiryInput) { in.EventType = "" }, field: "event_type"},
		{name: "unknown event type", mutate: func(in *EnquiryInput) { in.EventType = "concert" }, field: "event_type"},
		{name: "bad date format", mutate: func(in *EnquiryInput) { in.EventDate = "18/10/2026" }, field: "event_date"},
		{name: "past date", mutate: func(in *EnquiryInput) { in.EventDate = "2026-10-17" }, field: "event_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			enquiry, err := BuildEnquiry(in, today)
			require.Error(t, err)
			assert.Nil(t, enquiry)

			appErr := errors.As(err)
			assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
			assert.Contains(t, appErr.Details, tt.field)
			assert.Len(t, appErr.Details, 1)
		})
	}
}

func TestEventType(t *testing.T) {
	for _, opt := range EventTypeOptions {
		assert.True(t, opt.Value.Valid())
		assert.Equal(t, opt.Label, opt.Value.Label())
	}
	assert.False(t, EventType("").Valid())
	assert.Equal(t, "gala", EventType("gala").Label())
	assert.Len(t, EventTypeOptions, 6)
}

func TestEnquiryInput_IsZero(t *testing.T) {
	assert.True(t, EnquiryInput{}.IsZero())
	assert.False(t, validInput().IsZero())
}
