package phase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

func TestValidateProgressValue_Boundaries(t *testing.T) {
	for _, v := range []int{0, 1, 50, 99, 100} {
		assert.NoError(t, ValidateProgressValue(v), "value %d", v)
	}
	for _, v := range []int{-1, 101, -100, 1000} {
		err := ValidateProgressValue(v)
		require.Error(t, err, "value %d", v)
		assert.True(t, errors.Is(err, pkgErrors.ErrOutOfRange))
	}
}

func TestValidateProgressValue_AllInRange(t *testing.T) {
	for v := 0; v <= 100; v++ {
		assert.NoError(t, ValidateProgressValue(v))
	}
}

func TestParseProgressValue(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr *pkgErrors.AppError
	}{
		{raw: "0", want: 0},
		{raw: "100", want: 100},
		{raw: " 42 ", want: 42},
		{raw: "-1", wantErr: pkgErrors.ErrOutOfRange},
		{raw: "101", wantErr: pkgErrors.ErrOutOfRange},
		{raw: "", wantErr: pkgErrors.ErrNotANumber},
		{raw: "abc", wantErr: pkgErrors.ErrNotANumber},
		{raw: "12.5", wantErr: pkgErrors.ErrNotANumber},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseProgressValue(tt.raw)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsPhaseUnlocked(t *testing.T) {
	for p := 0; p <= 100; p++ {
		assert.True(t, IsPhaseUnlocked(constants.WorkPhaseDevelopment, p))
		assert.Equal(t, p == 100, IsPhaseUnlocked(constants.WorkPhaseMaintenance, p), "progress %d", p)
	}
	assert.False(t, IsPhaseUnlocked(constants.WorkPhaseMaintenance, 99))
	assert.False(t, IsPhaseUnlocked(constants.WorkPhaseMaintenance, 0))
	assert.False(t, IsPhaseUnlocked(constants.WorkPhase("QA"), 100))
}
