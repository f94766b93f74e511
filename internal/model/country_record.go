package model

import "time"

// CountryRecord is an insert-only history row in one of the per-country
// tables. It carries the staging core fields plus the derived age and
// days-since-last-consulted values computed at fanout time.
//
// The destination table varies per country, so this model has no static
// TableName; the repository addresses it via Table().
type CountryRecord struct {
	ID                     int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerName           string     `json:"customer_name" gorm:"column:customer_name;type:varchar(255);not null"`
	CustomerID             string     `json:"customer_id" gorm:"column:customer_id;type:varchar(18);not null"`
	OpenDate               time.Time  `json:"open_date" gorm:"column:open_date;type:date;not null"`
	LastConsultedDate      *time.Time `json:"last_consulted_date,omitempty" gorm:"column:last_consulted_date;type:date"`
	VaccinationID          *string    `json:"vaccination_id,omitempty" gorm:"column:vaccination_id;type:char(5)"`
	DrName                 *string    `json:"dr_name,omitempty" gorm:"column:dr_name;type:varchar(255)"`
	State                  *string    `json:"state,omitempty" gorm:"column:state;type:char(5)"`
	Country                *string    `json:"country,omitempty" gorm:"column:country;type:char(5)"`
	DOB                    *time.Time `json:"dob,omitempty" gorm:"column:dob;type:date"`
	IsActive               *string    `json:"is_active,omitempty" gorm:"column:is_active;type:char(1)"`
	Age                    *int       `json:"age,omitempty" gorm:"column:age"`
	DaysSinceLastConsulted *int       `json:"days_since_last_consulted,omitempty" gorm:"column:days_since_last_consulted"`
}
