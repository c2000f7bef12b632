// Package sanitizer normalizes guest-supplied contact data before it is
// validated and stored.
//
// All functions are idempotent: applying them twice gives the same result
// as applying them once.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number]), parsed against VN then US
//   - Names: collapse whitespace, drop control characters, trim
//   - Descriptions: as names, capped at MaxDescriptionRunes
//   - Emails: trim and lowercase
//   - Codes: trim and uppercase (discount codes)
package sanitizer
