package domain

import (
	"regexp"
	"strings"
	"time"

	"obi-site/pkg/errors"
)

// DateLayout is the wire and display format of event dates
const DateLayout = "2006-01-02"

// EventType is the kind of event an enquiry is about
type EventType string

const (
	EventTypeBirthday  EventType = "birthday"
	EventTypeCorporate EventType = "corporate"
	EventTypePicnic    EventType = "picnic"
	EventTypeWedding   EventType = "wedding"
	EventTypeWorkshop  EventType = "workshop"
	EventTypeOther     EventType = "other"
)

// EventTypeOption is a selectable event type with its display label
type EventTypeOption struct {
	Value EventType `json:"value"`
	Label string    `json:"label"`
}

// EventTypeOptions lists the event types in the order the form shows them
var EventTypeOptions = []EventTypeOption{
	{Value: EventTypeBirthday, Label: "Birthday Party"},
	{Value: EventTypeCorporate, Label: "Corporate Event"},
	{Value: EventTypePicnic, Label: "Picnic / Day Out"},
	{Value: EventTypeWedding, Label: "Wedding / Engagement"},
	{Value: EventTypeWorkshop, Label: "Workshop / Seminar"},
	{Value: EventTypeOther, Label: "Other"},
}

// Valid reports whether t is one of the known event types
func (t EventType) Valid() bool {
	for _, opt := range EventTypeOptions {
		if opt.Value == t {
			return true
		}
	}
	return false
}

// Label returns the display label, or the raw value for unknown types
func (t EventType) Label() string {
	for _, opt := range EventTypeOptions {
		if opt.Value == t {
			return opt.Label
		}
	}
	return string(t)
}

// Enquiry is one lead record as it is written to the record store
type Enquiry struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	EventType EventType `json:"event_type"`
	EventDate string    `json:"event_date"`
	Message   *string   `json:"message"`
}

// EnquiryInput holds the raw form values exactly as submitted
type EnquiryInput struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	EventType string `json:"event_type"`
	EventDate string `json:"event_date"`
	Message   string `json:"message"`
}

// IsZero reports whether every field is empty
func (in EnquiryInput) IsZero() bool {
	return in == EnquiryInput{}
}

// Same grammar browsers apply to <input type="email">.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// BuildEnquiry turns raw form input into the record sent to the store.
//
// Required fields are name, phone, email and event type. A blank date becomes
// today (in today's location) and a blank message becomes nil. Text fields are
// stored trimmed. Dates before
// today are rejected, matching what the date picker allows.
func BuildEnquiry(in EnquiryInput, today time.Time) (*Enquiry, error) {
	fields := map[string]interface{}{}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields["name"] = "Name is required"
	}

	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		fields["phone"] = "Phone is required"
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		fields["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		fields["email"] = "Please enter a valid email address"
	}

	eventType := EventType(strings.TrimSpace(in.EventType))
	switch {
	case eventType == "":
		fields["event_type"] = "Please select an event type"
	case !eventType.Valid():
		fields["event_type"] = "Unknown event type"
	}

	todayStr := today.Format(DateLayout)
	eventDate := strings.TrimSpace(in.EventDate)
	if eventDate == "" {
		eventDate = todayStr
	} else if d, err := time.Parse(DateLayout, eventDate); err != nil {
		fields["event_date"] = "Event date must be in YYYY-MM-DD format"
	} else if d.Format(DateLayout) < todayStr {
		fields["event_date"] = "Event date cannot be in the past"
	}

	if len(fields) > 0 {
		return nil, errors.NewValidationError("Please fill in the required fields", fields)
	}

	var message *string
	if m := strings.TrimSpace(in.Message); m != "" {
		message = &m
	}

	return &Enquiry{
		Name:      name,
		Phone:     phone,
		Email:     email,
		EventType: eventType,
		EventDate: eventDate,
		Message:   message,
	}, nil
}
