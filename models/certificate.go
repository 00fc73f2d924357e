package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("certificate not found")
	ErrDuplicateSerial    = errors.New("serial number already exists")
	ErrInvalidCertificate = errors.New("certificate requires a non-empty serial number")
	ErrInvalidStatus      = errors.New("certificate status is not a known value")
	ErrNoExpiryDate       = errors.New("certificate has no expiry date")
)

// Certificate statuses. Only active certificates are ever considered for
// expiry notifications.
const (
	StatusActive   = "active"
	StatusExpiring = "expiring"
	StatusExpired  = "expired"
	StatusRevoked  = "revoked"
)

// OwnerPlaceholder is used when a certificate has neither a certificate name
// nor a unit name.
const OwnerPlaceholder = "Quý cán bộ"

type Certificate struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SerialNumber    string     `gorm:"uniqueIndex;not null" json:"serialNumber"`
	CertificateName string     `json:"certificateName"`
	UnitName        string     `json:"unitName"`
	Email           string     `json:"email"`
	IssueDate       *time.Time `json:"issueDate"`
	ExpiryDate      *time.Time `json:"expiryDate"`
	Status          string     `gorm:"not null;default:active" json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (c *Certificate) BeforeSave(tx *gorm.DB) error {
	c.SerialNumber = strings.TrimSpace(c.SerialNumber)
	c.Email = strings.TrimSpace(c.Email)
	if c.SerialNumber == "" {
		return ErrInvalidCertificate
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	if !ValidStatus(c.Status) {
		return ErrInvalidStatus
	}
	return nil
}

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusExpiring, StatusExpired, StatusRevoked:
		return true
	}
	return false
}

// DaysLeft returns the number of whole calendar days between now and the
// expiry date. Negative when the certificate is already expired. Returns 0
// when ExpiryDate is nil; callers must exclude such certificates themselves.
func (c *Certificate) DaysLeft(now time.Time) int {
	if c.ExpiryDate == nil {
		return 0
	}
	return daysBetween(now, *c.ExpiryDate)
}

// OwnerDisplay resolves the display name for notification copy:
// certificateName, then unitName, then a generic placeholder.
func (c *Certificate) OwnerDisplay() string {
	if c.CertificateName != "" {
		return c.CertificateName
	}
	if c.UnitName != "" {
		return c.UnitName
	}
	return OwnerPlaceholder
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
