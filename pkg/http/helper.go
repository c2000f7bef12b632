package http

import (
	"net/http"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"strconv"
	"time"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ParseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC
// midnight).
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, value)
}

// ExtractDateRange reads the check_in and check_out query parameters.
func ExtractDateRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	rawIn, rawOut := query.Get("check_in"), query.Get("check_out")
	if rawIn == "" || rawOut == "" {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("check_in and check_out query parameters are required")
	}

	checkIn, err := ParseDate(rawIn)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid check_in parameter: " + rawIn)
	}
	checkOut, err := ParseDate(rawOut)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid check_out parameter: " + rawOut)
	}

	return checkIn, checkOut, nil
}
