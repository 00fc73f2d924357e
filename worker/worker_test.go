package worker

import (
	"testing"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/notify"
)

func TestCronSpec(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"08:00", "0 8 * * *"},
		{"00:00", "0 0 * * *"},
		{"23:45", "45 23 * * *"},
	}
	for _, test := range tests {
		spec, err := cronSpec(test.input)
		if err != nil {
			t.Errorf("cronSpec(%q) returned error: %v", test.input, err)
			continue
		}
		if spec != test.expected {
			t.Errorf("cronSpec(%q) = %q, expected %q", test.input, spec, test.expected)
		}
	}
}

func TestCronSpecInvalid(t *testing.T) {
	for _, input := range []string{"", "8am", "25:00", "08:61"} {
		if _, err := cronSpec(input); err == nil {
			t.Errorf("cronSpec(%q) should fail", input)
		}
	}
}

func TestStartRejectsBadTimezone(t *testing.T) {
	w := New(nil, notify.DefaultWindow, nil)
	if err := w.Start("08:00", "Mars/Olympus_Mons"); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}
