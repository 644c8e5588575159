package model

import (
	"time"

	"gorm.io/gorm"
)

// Address belongs to one customer. At most one address per customer has
// IsActive set; the address service maintains that.
type Address struct {
	ID            uint           `gorm:"primaryKey"`
	CustomerID    uint           `gorm:"column:customer_id;not null;index"`
	Name          string         `gorm:"column:name;size:100;not null"`
	ReceiverName  string         `gorm:"column:receiver_name;size:100"`
	ReceiverPhone string         `gorm:"column:receiver_phone;size:20"`
	Address       string         `gorm:"column:address;type:text;not null"`
	Latitude      float64        `gorm:"column:latitude"`
	Longitude     float64        `gorm:"column:longitude"`
	PostalCode    string         `gorm:"column:postal_code;size:10"`
	CityID        uint           `gorm:"column:city_id;not null"`
	IsActive      bool           `gorm:"column:is_active;not null;default:false"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Address) TableName() string { return "customer_addresses" }
