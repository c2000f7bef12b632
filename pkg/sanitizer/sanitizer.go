package sanitizer

import "strings"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	emailPipeline = Pipeline{strings.TrimSpace, strings.ToLower}
	codePipeline  = Pipeline{strings.TrimSpace, strings.ToUpper}
)

// Contact is the guest contact block of a booking request.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// SanitizeContact normalizes every field of c. The only failure is a phone
// number that cannot be parsed.
func SanitizeContact(c Contact) (Contact, error) {
	phone, err := NormalizePhone(c.Phone)
	if err != nil {
		return c, err
	}

	return Contact{
		Name:  NormalizeName(c.Name),
		Email: NormalizeEmail(c.Email),
		Phone: phone,
	}, nil
}
