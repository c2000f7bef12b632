package locale

import (
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

func InferCountryFromPhone(phone string) *Country {
	normalized := strings.TrimSpace(phone)
	if normalized == "" {
		return nil
	}

	for _, code := range Regions {
		country := Countries[code]
		for _, prefix := range country.PhonePrefixes {
			if strings.HasPrefix(normalized, prefix) {
				return &country
			}
		}
	}

	return nil
}

func InferTimezoneFromPhone(phone string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.DefaultTimezone
	}
	return DefaultTimezone
}

var (
	locationsMu sync.Mutex
	locations   = map[string]*time.Location{}
)

// LocationForPhone is the guest's local time zone as far as an E.164 phone
// number tells. Unknown numbers get UTC.
func LocationForPhone(phone string) *time.Location {
	name := InferTimezoneFromPhone(phone)

	locationsMu.Lock()
	defer locationsMu.Unlock()

	if loc, ok := locations[name]; ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}
	locations[name] = loc
	return loc
}
