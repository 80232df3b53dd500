package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

func TestNormalizeDate(t *testing.T) {
	normalizer := NewDateNormalizer()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "already canonical", raw: "2024-03-05", want: "2024-03-05"},
		{name: "slash date resolves day before month", raw: "05/03/2024", want: "2024-03-05"},
		{name: "unambiguous month day year", raw: "03/25/2024", want: "2024-03-25"},
		{name: "dash day month year", raw: "05-03-2024", want: "2024-03-05"},
		{name: "slash year first", raw: "2024/03/05", want: "2024-03-05"},
		{name: "dotted day month year", raw: "05.03.2024", want: "2024-03-05"},
		{name: "surrounding whitespace trimmed", raw: "  2024-03-05  ", want: "2024-03-05"},
		{name: "rfc3339 fallback", raw: "2024-03-05T10:30:00Z", want: "2024-03-05"},
		{name: "datetime fallback", raw: "2024-03-05 10:30:00", want: "2024-03-05"},
		{name: "compact fallback", raw: "20240305", want: "2024-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizer.Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDateRejectsInvalid(t *testing.T) {
	normalizer := NewDateNormalizer()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "impossible day and month", raw: "31/31/2024"},
		{name: "empty value", raw: ""},
		{name: "whitespace only", raw: "   "},
		{name: "free text", raw: "hace dos semanas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizer.Normalize(tt.raw)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
}
