package models

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysLeft(t *testing.T) {
	now := date(2025, 9, 1)
	tests := []struct {
		expiry   time.Time
		expected int
	}{
		{date(2025, 9, 1), 0},
		{date(2025, 9, 8), 7},
		{date(2025, 10, 1), 30},
		{date(2025, 8, 27), -5},
	}
	for _, test := range tests {
		cert := Certificate{ExpiryDate: &test.expiry}
		if got := cert.DaysLeft(now); got != test.expected {
			t.Errorf("DaysLeft(expiry=%s) = %d, expected %d", test.expiry.Format("2006-01-02"), got, test.expected)
		}
	}
}

func TestDaysLeftIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2025, 9, 1, 23, 59, 0, 0, time.UTC)
	expiry := time.Date(2025, 9, 8, 0, 1, 0, 0, time.UTC)
	cert := Certificate{ExpiryDate: &expiry}
	if got := cert.DaysLeft(now); got != 7 {
		t.Fatalf("day math must be calendar-based, got %d", got)
	}
}

func TestOwnerDisplayFallbackChain(t *testing.T) {
	tests := []struct {
		name, unit, expected string
	}{
		{"Nguyễn Văn A", "Phòng CNTT", "Nguyễn Văn A"},
		{"", "Phòng CNTT", "Phòng CNTT"},
		{"", "", OwnerPlaceholder},
	}
	for _, test := range tests {
		cert := Certificate{CertificateName: test.name, UnitName: test.unit}
		if got := cert.OwnerDisplay(); got != test.expected {
			t.Errorf("OwnerDisplay(%q, %q) = %q, expected %q", test.name, test.unit, got, test.expected)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusActive, StatusExpiring, StatusExpired, StatusRevoked} {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidStatus("deleted") {
		t.Errorf("unknown status must be invalid")
	}
}
