package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgErrors "project-tracker/pkg/errors"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"081234567890":       "6281234567890",
		"+62 812-3456-7890":  "6281234567890",
		"6281234567890":      "6281234567890",
		"81234567890":        "6281234567890",
		" (0812) 3456 7890 ": "6281234567890",
	}
	for in, want := range cases {
		got, err := Normalize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "0812", "62123", "0812345678901234567890"} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, pkgErrors.ErrBadRequest, in)
	}
}
