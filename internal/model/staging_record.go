package model

import (
	"strings"
	"time"
)

// StagingRecord is a row of the append-only staging table. Staging is the
// single source of truth for the pipeline: downstream loads select on the
// processed flag and never delete rows.
type StagingRecord struct {
	ID                int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerName      string     `json:"customer_name" gorm:"column:customer_name;type:varchar(255);not null"`
	CustomerID        string     `json:"customer_id" gorm:"column:customer_id;type:varchar(18);not null"`
	OpenDate          time.Time  `json:"open_date" gorm:"column:open_date;type:date;not null"`
	LastConsultedDate *time.Time `json:"last_consulted_date,omitempty" gorm:"column:last_consulted_date;type:date;index:idx_staging_last_consulted_date"`
	VaccinationID     *string    `json:"vaccination_id,omitempty" gorm:"column:vaccination_id;type:char(5)"`
	DrName            *string    `json:"dr_name,omitempty" gorm:"column:dr_name;type:varchar(255)"`
	State             *string    `json:"state,omitempty" gorm:"column:state;type:char(5)"`
	Country           *string    `json:"country,omitempty" gorm:"column:country;type:char(5)"`
	DOB               *time.Time `json:"dob,omitempty" gorm:"column:dob;type:date"`
	IsActive          *string    `json:"is_active,omitempty" gorm:"column:is_active;type:char(1)"`
	Processed         bool       `json:"processed" gorm:"column:processed;default:false"`
}

// TableName specifies the table name for the StagingRecord model.
func (StagingRecord) TableName() string {
	return "staging"
}

// CountryCode returns the record's trimmed country code, or empty string
// when the country is absent. The country column is char(5), so values read
// back from Postgres carry bpchar blank padding.
func (s StagingRecord) CountryCode() string {
	if s.Country == nil {
		return ""
	}
	return strings.TrimSpace(*s.Country)
}
