package models

import "time"

// NotificationLog records that an expiry warning was sent for a certificate
// at a given threshold. It backs the optional scan dedupe: with it enabled a
// certificate is warned at most once per threshold, instead of once per scan
// run that happens to land exactly on the threshold day.
type NotificationLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CertificateID uint      `gorm:"not null;uniqueIndex:idx_notification_dedupe" json:"certificate_id"`
	ThresholdDays int       `gorm:"not null;uniqueIndex:idx_notification_dedupe" json:"threshold_days"`
	SentAt        time.Time `json:"sent_at"`
}
