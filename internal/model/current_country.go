package model

import "time"

// CurrentCountry is the one-row-per-customer summary of the most recent
// country of contact, maintained by upsert only.
type CurrentCountry struct {
	CustomerID        string    `json:"customer_id" gorm:"column:customer_id;primaryKey;type:varchar(18)"`
	CustomerName      string    `json:"customer_name" gorm:"column:customer_name;type:varchar(255)"`
	Country           string    `json:"country" gorm:"column:country;type:varchar(5)"`
	LastConsultedDate time.Time `json:"last_consulted_date" gorm:"column:last_consulted_date;type:date"`
}

// TableName specifies the table name for the CurrentCountry model.
func (CurrentCountry) TableName() string {
	return "current_country"
}
