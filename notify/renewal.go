package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RenewResult reports a completed renewal. MailError is set when the
// confirmation mail failed; the renewal itself is already committed at that
// point and is never rolled back.
type RenewResult struct {
	NewExpiryDate time.Time `json:"newExpiryDate"`
	MailSent      bool      `json:"mailSent"`
	MailError     string    `json:"mailError,omitempty"`
}

// Renew extends the certificate's expiry by one calendar year, marks it
// active and sends a confirmation mail when the record has an email address.
// Returns models.ErrNotFound for an unknown id and models.ErrNoExpiryDate
// when the record has no expiry to extend.
func (s *Service) Renew(ctx context.Context, id uint) (*RenewResult, error) {
	now := s.Now()
	cert, err := s.store.Renew(id, now)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"certificate_id": cert.ID,
		"serial":         cert.SerialNumber,
		"new_expiry":     cert.ExpiryDate.Format(dateLayout),
	})
	log.Info("certificate renewed")

	res := &RenewResult{NewExpiryDate: *cert.ExpiryDate}
	if cert.Email == "" {
		return res, nil
	}

	msg, err := renewalMessage(cert)
	if err != nil {
		log.WithError(err).Error("failed to render renewal confirmation")
		res.MailError = err.Error()
		return res, nil
	}
	if err := s.mailer.Send(msg); err != nil {
		log.WithError(err).WithField("email", cert.Email).Error("failed to send renewal confirmation")
		res.MailError = err.Error()
		return res, nil
	}
	res.MailSent = true
	log.WithField("email", cert.Email).Info("renewal confirmation sent")
	return res, nil
}
