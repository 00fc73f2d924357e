package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/models"
)

func TestWarningMessageScheduledTone(t *testing.T) {
	expiry := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	cert := &models.Certificate{
		SerialNumber:    "SN-123",
		CertificateName: "Nguyễn Văn A",
		Email:           "a@example.com",
		ExpiryDate:      &expiry,
	}

	msg, err := warningMessage(cert, 30, testNow, false)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if msg.To != "a@example.com" {
		t.Fatalf("wrong recipient: %s", msg.To)
	}
	if !strings.Contains(msg.Subject, "30 ngày") || strings.Contains(msg.Subject, "KHẨN") {
		t.Fatalf("scheduled subject wrong: %s", msg.Subject)
	}
	if !strings.Contains(msg.Text, "SN-123") || !strings.Contains(msg.Text, "Nguyễn Văn A") {
		t.Fatalf("body missing serial or owner: %s", msg.Text)
	}
	if !strings.Contains(msg.Text, "01/10/2025") {
		t.Fatalf("expiry date must use day-first format: %s", msg.Text)
	}
	if msg.HTML == "" {
		t.Fatalf("expected an HTML part")
	}
}

func TestWarningMessageUrgentTone(t *testing.T) {
	expiry := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	cert := &models.Certificate{SerialNumber: "SN-7", UnitName: "Phòng CNTT", Email: "b@example.com", ExpiryDate: &expiry}

	msg, err := warningMessage(cert, 7, testNow, true)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(msg.Subject, "CẢNH BÁO KHẨN") {
		t.Fatalf("manual scan must use urgent copy: %s", msg.Subject)
	}
	if !strings.Contains(msg.Text, "Phòng CNTT") {
		t.Fatalf("unit name fallback missing: %s", msg.Text)
	}
}

func TestWarningMessageOwnerPlaceholder(t *testing.T) {
	expiry := time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC)
	cert := &models.Certificate{SerialNumber: "SN-15", Email: "c@example.com", ExpiryDate: &expiry}

	msg, err := warningMessage(cert, 15, testNow, false)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(msg.Text, models.OwnerPlaceholder) {
		t.Fatalf("expected placeholder owner, got: %s", msg.Text)
	}
}

func TestRenewalMessage(t *testing.T) {
	expiry := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	cert := &models.Certificate{SerialNumber: "SN-9", CertificateName: "Trần Thị B", Email: "d@example.com", ExpiryDate: &expiry}

	msg, err := renewalMessage(cert)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(msg.Subject, "gia hạn thành công") || !strings.Contains(msg.Subject, "SN-9") {
		t.Fatalf("renewal subject wrong: %s", msg.Subject)
	}
	if !strings.Contains(msg.Text, "01/06/2026") {
		t.Fatalf("new expiry missing from body: %s", msg.Text)
	}
	if strings.Contains(msg.Subject, "hết hạn sau") {
		t.Fatalf("renewal copy must confirm, not warn: %s", msg.Subject)
	}
}
