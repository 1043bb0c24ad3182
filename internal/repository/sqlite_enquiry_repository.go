package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"obi-site/internal/domain"
	"obi-site/pkg/database"
)

// enquiryRow is the local table layout, mirroring the hosted table
type enquiryRow struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Phone     string    `gorm:"not null"`
	Email     string    `gorm:"not null;index"`
	EventType string    `gorm:"not null"`
	EventDate string    `gorm:"type:varchar(10);not null"`
	Message   *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// sqliteEnquiryRepository keeps enquiries in a local SQLite file
type sqliteEnquiryRepository struct {
	db    *database.SQLiteDB
	table string
}

// NewSQLiteEnquiryRepository creates the table if needed and returns the repository
func NewSQLiteEnquiryRepository(db *database.SQLiteDB, table string) (EnquiryRepository, error) {
	if err := db.DB.Table(table).AutoMigrate(&enquiryRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", table, err)
	}
	return &sqliteEnquiryRepository{db: db, table: table}, nil
}

func (r *sqliteEnquiryRepository) Insert(ctx context.Context, enquiry *domain.Enquiry) error {
	row := enquiryRow{
		Name:      enquiry.Name,
		Phone:     enquiry.Phone,
		Email:     enquiry.Email,
		EventType: string(enquiry.EventType),
		EventDate: enquiry.EventDate,
		Message:   enquiry.Message,
	}

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(r.table).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert enquiry: %w", err)
	}
	return nil
}

func (r *sqliteEnquiryRepository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

func (r *sqliteEnquiryRepository) Backend() string {
	return "sqlite"
}
