package clicksend

import "testing"

type phoneTest struct {
	in       string
	expected string
}

var phoneTests = []phoneTest{
	{"07700 900123", "+447700900123"},
	{"7700900123", "+447700900123"},
	{"(0)7700-900-123", "+447700900123"},
	{"+44 7700 900123", "+447700900123"},
	{"+1 (555) 010-0000", "+15550100000"},
}

func TestFormatPhoneNumber(t *testing.T) {
	for _, tt := range phoneTests {
		actual, err := FormatPhoneNumber(tt.in)
		if err != nil {
			t.Errorf("FormatPhoneNumber(%q) error: %v", tt.in, err)
			continue
		}
		if actual != tt.expected {
			t.Errorf("FormatPhoneNumber called with %s. Expected %s, actual %s",
				tt.in, tt.expected, actual)
		}
	}
	if _, err := FormatPhoneNumber(""); err == nil {
		t.Error("expected error for empty phone number")
	}
}
