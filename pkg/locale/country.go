package locale

const (
	DefaultTimezone = "UTC"
)

type Country struct {
	Code            string   // ISO 3166-1 alpha-2 country code (e.g., "VN", "US")
	Name            string   // Human-readable country name
	PhonePrefixes   []string // E.164 prefixes, longest first where they overlap
	DefaultTimezone string   // IANA timezone identifier (e.g., "Asia/Ho_Chi_Minh")
}

var (
	Countries = map[string]Country{
		"VN": {
			Code:            "VN",
			Name:            "Vietnam",
			PhonePrefixes:   []string{"+84"},
			DefaultTimezone: "Asia/Ho_Chi_Minh",
		},
		"US": {
			Code:            "US",
			Name:            "United States",
			PhonePrefixes:   []string{"+1"},
			DefaultTimezone: "America/New_York",
		},
	}

	// Regions is the order local numbers are tried in when they carry no
	// country prefix.
	Regions = []string{"VN", "US"}
)
