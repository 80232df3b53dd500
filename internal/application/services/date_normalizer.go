package services

import (
	"strings"
	"time"

	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

// CanonicalDateLayout is the emitted year-month-day form
const CanonicalDateLayout = "2006-01-02"

// explicitDateLayouts is the strict try order. Day/month/year is tried
// before month/day/year, so an ambiguous numeric date like 03/04/2024
// always resolves day-before-month. That precedence is inherited from the
// production pipeline and must not be reordered without a product decision.
var explicitDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
	"02.01.2006",
	"2006.01.02",
}

// lenientDateLayouts is the fallback pass for inputs no explicit layout
// accepts, gated by the year sanity window below.
var lenientDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2 January 2006",
	"January 2, 2006",
	"20060102",
}

const (
	minAcceptedYear = 1900
	maxAcceptedYear = 2100
)

// DateNormalizer parses heterogeneous date strings into canonical form
type DateNormalizer struct{}

// NewDateNormalizer creates a new date normalizer
func NewDateNormalizer() *DateNormalizer {
	return &DateNormalizer{}
}

// Normalize returns the canonical year-month-day form of a raw date string.
// Explicit layouts are tried strictly in order; the first that parses wins.
// A lenient fallback accepts additional shapes only when the resulting year
// falls within [1900, 2100]. Anything else is a validation error.
func (n *DateNormalizer) Normalize(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", apperrors.NewValidationError("empty date value")
	}

	for _, layout := range explicitDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(CanonicalDateLayout), nil
		}
	}

	for _, layout := range lenientDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if year := parsed.Year(); year >= minAcceptedYear && year <= maxAcceptedYear {
			return parsed.Format(CanonicalDateLayout), nil
		}
	}

	return "", apperrors.NewValidationError("unrecognized date format: " + value)
}
