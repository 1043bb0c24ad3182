package domain

import "time"

// RoutingKeyEnquiryCreated is published once an enquiry is stored
const RoutingKeyEnquiryCreated = "enquiry.created"

// EnquiryCreatedEvent describes a stored enquiry to downstream consumers
type EnquiryCreatedEvent struct {
	EventID    string    `json:"event_id"`
	FormID     string    `json:"form_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Enquiry    Enquiry   `json:"enquiry"`
}
