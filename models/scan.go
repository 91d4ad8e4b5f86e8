package models

import "time"

// Scan stores aggregated scan counts per day and QR, written on the redirect
// path with an upsert and queried by the stats endpoints.
type Scan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Date          time.Time `gorm:"index:idx_scan_date_qr,unique;type:date;not null" json:"date"`
	QRID          uint      `gorm:"index;index:idx_scan_date_qr,unique;not null" json:"qr_id"`
	DestinationID *uint     `json:"destination_id"`
	Count         int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
