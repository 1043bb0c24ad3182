package service

import (
	"context"

	"obi-site/internal/domain"
)

// EnquirySubmitter stores enquiries for a form instance
type EnquirySubmitter interface {
	// Submit stores the enquiry; see EnquiryService.Submit for the error contract
	Submit(ctx context.Context, formID string, enquiry *domain.Enquiry) error

	// Health checks the record store
	Health(ctx context.Context) error

	// Backend names the record store in use
	Backend() string
}

// FormTokenIssuer issues and verifies form instance tokens
type FormTokenIssuer interface {
	Issue() (*FormToken, error)
	Verify(token string) (formID string, err error)
}

// Services aggregates the services the handlers depend on
type Services struct {
	Enquiries  EnquirySubmitter
	FormTokens FormTokenIssuer
}

var (
	_ EnquirySubmitter = (*EnquiryService)(nil)
	_ FormTokenIssuer  = (*FormTokenService)(nil)
	_ EnquiryListener  = (*TelegramAlerter)(nil)
	_ EnquiryListener  = (*BrokerAlerter)(nil)
)
