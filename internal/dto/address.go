package dto

import "time"

type CreateAddressRequest struct {
	Name          string  `json:"name" binding:"required,max=100"`
	ReceiverName  string  `json:"receiver_name" binding:"required,max=100"`
	ReceiverPhone string  `json:"receiver_phone" binding:"required,numeric,min=10,max=15"`
	Address       string  `json:"address" binding:"required"`
	Latitude      float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude     float64 `json:"longitude" binding:"omitempty,longitude"`
	PostalCode    string  `json:"postal_code" binding:"omitempty,numeric,max=10"`
	CityID        uint    `json:"city_id" binding:"required"`
}

type UpdateAddressRequest struct {
	Name          *string  `json:"name" binding:"omitempty,max=100"`
	ReceiverName  *string  `json:"receiver_name" binding:"omitempty,max=100"`
	ReceiverPhone *string  `json:"receiver_phone" binding:"omitempty,numeric,min=10,max=15"`
	Address       *string  `json:"address" binding:"omitempty,min=1"`
	Latitude      *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" binding:"omitempty,longitude"`
	PostalCode    *string  `json:"postal_code" binding:"omitempty,numeric,max=10"`
	CityID        *uint    `json:"city_id" binding:"omitempty,min=1"`
}

type CityResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province"`
}

type AddressResponse struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	ReceiverName  string        `json:"receiver_name"`
	ReceiverPhone string        `json:"receiver_phone"`
	Address       string        `json:"address"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	PostalCode    string        `json:"postal_code"`
	CityID        uint          `json:"city_id"`
	City          *CityResponse `json:"city"`
	IsActive      bool          `json:"is_active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
