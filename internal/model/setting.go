package model

import "time"

// Setting is a plain name/value row. Consumers parse values themselves.
type Setting struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;size:100;uniqueIndex;not null"`
	Value     string    `gorm:"column:value;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Setting) TableName() string { return "settings" }
