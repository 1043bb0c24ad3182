package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"obi-site/internal/domain"
	"obi-site/pkg/database"
)

type pgExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// enquiryRepository stores enquiries directly in PostgreSQL
type enquiryRepository struct {
	db    pgExecer
	table string
}

// NewEnquiryRepository creates a PostgreSQL-backed repository
func NewEnquiryRepository(db *database.PostgresDB, table string) EnquiryRepository {
	return newEnquiryRepository(db.Pool, table)
}

func newEnquiryRepository(db pgExecer, table string) *enquiryRepository {
	return &enquiryRepository{db: db, table: table}
}

// Insert writes one row; a blank message is stored as NULL
func (r *enquiryRepository) Insert(ctx context.Context, enquiry *domain.Enquiry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, phone, email, event_type, event_date, message)
		VALUES ($1, $2, $3, $4, $5::date, $6)
	`, pgx.Identifier{r.table}.Sanitize())

	tag, err := r.db.Exec(ctx, query,
		enquiry.Name,
		enquiry.Phone,
		enquiry.Email,
		string(enquiry.EventType),
		enquiry.EventDate,
		enquiry.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert enquiry: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("failed to insert enquiry: %d rows affected", tag.RowsAffected())
	}

	return nil
}

func (r *enquiryRepository) Health(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *enquiryRepository) Backend() string {
	return "postgres"
}
