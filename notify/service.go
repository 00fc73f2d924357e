package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/mailer"
	"github.com/phamluong43-design/quan-ly-chung-thu-so/models"
)

// ErrScanBusy is returned when a scan is requested while another is still
// running. Scans never run in parallel: interleaved sends against the same
// data could double-notify a certificate.
var ErrScanBusy = errors.New("a scan is already running")

// Notification thresholds in days before expiry. A warning goes out only on
// the day the remaining time exactly equals one of these.
var thresholds = []int{30, 15, 7}

const (
	ModeScheduled = "scheduled"
	ModeManual    = "manual"
)

// Window is the candidate range in whole days from today, inclusive.
type Window struct {
	MinDays int
	MaxDays int
}

// DefaultWindow matches the daily scan: everything expiring within 45 days.
var DefaultWindow = Window{MinDays: 0, MaxDays: 45}

// CertError records a per-certificate failure inside a scan run.
type CertError struct {
	CertificateID uint   `json:"certificateId"`
	SerialNumber  string `json:"serialNumber"`
	Reason        string `json:"reason"`
}

// Summary is the result of one scan run. Found counts every candidate in the
// window; Notified counts only successful sends.
type Summary struct {
	RunID    string      `json:"runId"`
	Mode     string      `json:"mode"`
	Found    int         `json:"found"`
	Notified int         `json:"notified"`
	Errors   []CertError `json:"errors,omitempty"`
}

// Store is the repository surface the notification service needs.
type Store interface {
	CandidatesInWindow(now time.Time, minDays, maxDays int) ([]models.Certificate, error)
	Renew(id uint, now time.Time) (*models.Certificate, error)
	WasNotified(certID uint, thresholdDays int) (bool, error)
	MarkNotified(certID uint, thresholdDays int, at time.Time) error
}

// Service is the expiry scan engine plus the renewal action. One Service
// serializes all scans through an internal lock.
type Service struct {
	store  Store
	mailer mailer.Mailer
	log    *logrus.Logger

	// Dedupe consults the notification sent-log before sending, giving
	// at-most-once per (certificate, threshold). Off by default: without it
	// idempotency rests on threshold exactness and at most one run per day.
	Dedupe bool

	// Now is the clock, overridable in tests. Should return time in the
	// organization's timezone so day arithmetic matches the local calendar.
	Now func() time.Time

	mu sync.Mutex
}

func NewService(store Store, m mailer.Mailer, log *logrus.Logger) *Service {
	return &Service{
		store:  store,
		mailer: m,
		log:    log,
		Now:    time.Now,
	}
}

// RunScan fetches candidates in the window, sends a warning for each one
// sitting exactly on a threshold, and reports a summary. A repository error
// aborts the whole run; a delivery error only skips that certificate. On
// context cancellation the partial summary is returned along with ctx.Err().
func (s *Service) RunScan(ctx context.Context, w Window, mode string) (*Summary, error) {
	if !s.mu.TryLock() {
		return nil, ErrScanBusy
	}
	defer s.mu.Unlock()

	now := s.Now()
	sum := &Summary{RunID: uuid.New().String(), Mode: mode}
	log := s.log.WithFields(logrus.Fields{"run_id": sum.RunID, "mode": mode})
	log.WithFields(logrus.Fields{"min_days": w.MinDays, "max_days": w.MaxDays}).Info("expiry scan started")

	certs, err := s.store.CandidatesInWindow(now, w.MinDays, w.MaxDays)
	if err != nil {
		log.WithError(err).Error("candidate query failed, scan aborted")
		return nil, fmt.Errorf("query scan candidates: %w", err)
	}
	sum.Found = len(certs)

	for i := range certs {
		if err := ctx.Err(); err != nil {
			log.WithFields(logrus.Fields{"found": sum.Found, "notified": sum.Notified}).
				Warn("scan interrupted, returning partial summary")
			return sum, err
		}
		s.notifyOne(&certs[i], now, mode, sum, log)
	}

	log.WithFields(logrus.Fields{"found": sum.Found, "notified": sum.Notified, "errors": len(sum.Errors)}).
		Info("expiry scan complete")
	return sum, nil
}

func (s *Service) notifyOne(cert *models.Certificate, now time.Time, mode string, sum *Summary, log *logrus.Entry) {
	daysLeft := cert.DaysLeft(now)
	if !atThreshold(daysLeft) {
		return
	}

	clog := log.WithFields(logrus.Fields{
		"certificate_id": cert.ID,
		"serial":         cert.SerialNumber,
		"days_left":      daysLeft,
	})

	if s.Dedupe {
		sent, err := s.store.WasNotified(cert.ID, daysLeft)
		if err != nil {
			clog.WithError(err).Error("sent-log lookup failed")
			sum.Errors = append(sum.Errors, certError(cert, err))
			return
		}
		if sent {
			clog.Debug("already notified at this threshold, skipping")
			return
		}
	}

	msg, err := warningMessage(cert, daysLeft, now, mode == ModeManual)
	if err != nil {
		clog.WithError(err).Error("failed to render warning")
		sum.Errors = append(sum.Errors, certError(cert, err))
		return
	}
	if err := s.mailer.Send(msg); err != nil {
		clog.WithError(err).WithField("email", cert.Email).Error("failed to send expiry warning")
		sum.Errors = append(sum.Errors, certError(cert, err))
		return
	}
	sum.Notified++
	clog.WithField("email", cert.Email).Info("expiry warning sent")

	if s.Dedupe {
		if err := s.store.MarkNotified(cert.ID, daysLeft, now); err != nil {
			// The mail went out; a failed mark only risks a duplicate later.
			clog.WithError(err).Warn("failed to record sent notification")
		}
	}
}

func atThreshold(daysLeft int) bool {
	for _, t := range thresholds {
		if daysLeft == t {
			return true
		}
	}
	return false
}

func certError(cert *models.Certificate, err error) CertError {
	return CertError{
		CertificateID: cert.ID,
		SerialNumber:  cert.SerialNumber,
		Reason:        err.Error(),
	}
}
