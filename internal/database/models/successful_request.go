package models

import (
	"time"
)

// SuccessfulRequest is one retained 2xx request of a successful-request run
type SuccessfulRequest struct {
	ID           uint      `gorm:"primaryKey"`
	RunID        uint      `gorm:"not null;index"`
	IP           string    `gorm:"not null;index"`
	Timestamp    time.Time `gorm:"not null"`
	Method       string
	URL          string
	StatusCode   string
	Country      string `gorm:"index"`
	Date         string
	Hour         int
	UserAgent    string
	Referer      string
	ResponseSize int64
	Browser      string
	OS           string
	DeviceType   string
}

func (SuccessfulRequest) TableName() string {
	return "successful_requests"
}
