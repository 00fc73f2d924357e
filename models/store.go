package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// CertificateStore is the repository for certificate records. All queries go
// through an injected *gorm.DB; there is no package-level handle.
type CertificateStore struct {
	db *gorm.DB
}

func NewCertificateStore(db *gorm.DB) *CertificateStore {
	return &CertificateStore{db: db}
}

// All returns every certificate ordered by expiry date ascending, soonest
// first.
func (s *CertificateStore) All() ([]Certificate, error) {
	var certs []Certificate
	if err := s.db.Order("expiry_date ASC").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

func (s *CertificateStore) ByID(id uint) (*Certificate, error) {
	var cert Certificate
	if err := s.db.First(&cert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

func (s *CertificateStore) BySerial(serial string) (*Certificate, error) {
	var cert Certificate
	if err := s.db.First(&cert, "serial_number = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// Create inserts a new certificate. A serial number that already exists is
// rejected with ErrDuplicateSerial, never silently overwritten.
func (s *CertificateStore) Create(cert *Certificate) error {
	var count int64
	if err := s.db.Model(&Certificate{}).Where("serial_number = ?", cert.SerialNumber).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateSerial
	}
	return s.db.Create(cert).Error
}

// Update overwrites every field of an existing certificate.
func (s *CertificateStore) Update(cert *Certificate) error {
	var count int64
	if err := s.db.Model(&Certificate{}).Where("id = ?", cert.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	if err := s.db.Model(&Certificate{}).Where("serial_number = ? AND id <> ?", cert.SerialNumber, cert.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateSerial
	}
	// Full-field overwrite, except the creation timestamp the caller's
	// struct does not carry.
	return s.db.Omit("created_at").Save(cert).Error
}

// Delete hard-deletes a certificate. The UI calls this "revoke" but the
// record is removed outright; the revoked status is a separate transition
// done through Update.
func (s *CertificateStore) Delete(id uint) error {
	res := s.db.Delete(&Certificate{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CandidatesInWindow returns scan candidates: active certificates with a
// non-empty email whose expiry date falls within [minDays, maxDays] whole
// days from now, ordered by expiry date ascending.
func (s *CertificateStore) CandidatesInWindow(now time.Time, minDays, maxDays int) ([]Certificate, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := day.AddDate(0, 0, minDays)
	until := day.AddDate(0, 0, maxDays+1)

	var certs []Certificate
	err := s.db.
		Where("status = ?", StatusActive).
		Where("expiry_date IS NOT NULL").
		Where("email IS NOT NULL AND email <> ''").
		Where("expiry_date >= ? AND expiry_date < ?", from, until).
		Order("expiry_date ASC").
		Find(&certs).Error
	if err != nil {
		return nil, err
	}
	return certs, nil
}

// Renew extends a certificate's expiry by one calendar year and forces its
// status back to active. The read and write run in one transaction so
// concurrent renewals of the same id cannot interleave.
func (s *CertificateStore) Renew(id uint, now time.Time) (*Certificate, error) {
	var cert Certificate
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cert, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if cert.ExpiryDate == nil {
			return ErrNoExpiryDate
		}
		newExpiry := cert.ExpiryDate.AddDate(1, 0, 0)
		cert.ExpiryDate = &newExpiry
		cert.Status = StatusActive
		cert.UpdatedAt = now
		// Update through the loaded row so the save hook sees the real
		// serial number, not an empty model.
		return tx.Model(&cert).Updates(map[string]interface{}{
			"expiry_date": newExpiry,
			"status":      StatusActive,
			"updated_at":  now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// WasNotified reports whether a warning for the given threshold has already
// been recorded for the certificate.
func (s *CertificateStore) WasNotified(certID uint, thresholdDays int) (bool, error) {
	var count int64
	err := s.db.Model(&NotificationLog{}).
		Where("certificate_id = ? AND threshold_days = ?", certID, thresholdDays).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *CertificateStore) MarkNotified(certID uint, thresholdDays int, at time.Time) error {
	return s.db.Create(&NotificationLog{
		CertificateID: certID,
		ThresholdDays: thresholdDays,
		SentAt:        at,
	}).Error
}

// UserStore resolves login accounts.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// ActiveByUsername returns the active user with the given username, or
// ErrNotFound. Locked accounts are treated the same as missing ones.
func (s *UserStore) ActiveByUsername(username string) (*User, error) {
	var user User
	err := s.db.First(&user, "username = ? AND is_active = ?", username, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) ByID(id uint) (*User, error) {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Create(user *User) error {
	return s.db.Create(user).Error
}
