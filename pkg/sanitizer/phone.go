package sanitizer

import (
	"errors"
	"staybook/pkg/locale"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone returns phone in E.164. Numbers without a country prefix
// are tried against each supported region in order. An empty input stays
// empty; anything that is not a valid number in any region is an error.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}

	for _, region := range locale.Regions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164), nil
		}
	}
	return "", ErrInvalidPhone
}
