package repository

import (
	"context"

	"obi-site/internal/domain"
)

// EnquiryRepository writes enquiries to a record store
type EnquiryRepository interface {
	// Insert stores one enquiry. Any error means the row was not written.
	Insert(ctx context.Context, enquiry *domain.Enquiry) error

	// Health checks that the store is reachable
	Health(ctx context.Context) error

	// Backend names the store, used in logs and metrics
	Backend() string
}

// RowInserter inserts one row into a named collection of a hosted store
type RowInserter interface {
	Insert(ctx context.Context, table string, record interface{}) error
	Health(ctx context.Context) error
}
