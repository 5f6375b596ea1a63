package clicksend

import (
	"fmt"
	"strings"
)

// FormatPhoneNumber returns phone in E.164 form. Numbers without a leading
// '+' are taken to be UK numbers: a leading 0 is replaced by +44, otherwise
// +44 is prepended.
func FormatPhoneNumber(phone string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("%w: phone number is required", ErrInvalid)
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if !strings.HasPrefix(phone, "+") {
		return "+44" + strings.TrimPrefix(digits, "0"), nil
	}
	return "+" + digits, nil
}
