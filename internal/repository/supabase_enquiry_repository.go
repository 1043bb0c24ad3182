package repository

import (
	"context"
	"fmt"

	"obi-site/internal/domain"
)

// supabaseEnquiryRepository stores enquiries in a Supabase table
type supabaseEnquiryRepository struct {
	client RowInserter
	table  string
}

// NewSupabaseEnquiryRepository creates a repository writing to table
func NewSupabaseEnquiryRepository(client RowInserter, table string) EnquiryRepository {
	return &supabaseEnquiryRepository{client: client, table: table}
}

// Insert sends exactly the six enquiry attributes
func (r *supabaseEnquiryRepository) Insert(ctx context.Context, enquiry *domain.Enquiry) error {
	if err := r.client.Insert(ctx, r.table, enquiry); err != nil {
		return fmt.Errorf("failed to insert enquiry into %s: %w", r.table, err)
	}
	return nil
}

func (r *supabaseEnquiryRepository) Health(ctx context.Context) error {
	return r.client.Health(ctx)
}

func (r *supabaseEnquiryRepository) Backend() string {
	return "supabase"
}
