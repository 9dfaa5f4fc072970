package phase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-tracker/internal/model"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

var (
	t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(48 * time.Hour)
)

func TestAdvance_DevelopmentReaches100(t *testing.T) {
	out, err := Advance(Development{Progress: 80}, Entry{WorkPhase: constants.WorkPhaseDevelopment, Percentage: 100}, t0)
	require.NoError(t, err)

	assert.True(t, out.Transitioned)
	assert.Equal(t, constants.ProjectStatusDone, out.Status)
	m, ok := out.Next.(Maintenance)
	require.True(t, ok)
	assert.Equal(t, 100, m.Development)
	assert.Equal(t, t0, m.CompletedAt)
}

func TestAdvance_Resubmit100KeepsCompletedAt(t *testing.T) {
	prev := Maintenance{Development: 100, Progress: 20, CompletedAt: t0}
	out, err := Advance(prev, Entry{WorkPhase: constants.WorkPhaseDevelopment, Percentage: 100}, t1)
	require.NoError(t, err)

	assert.False(t, out.Transitioned)
	m, ok := out.Next.(Maintenance)
	require.True(t, ok)
	assert.Equal(t, t0, m.CompletedAt)
	assert.Equal(t, 20, m.Progress)
}

func TestAdvance_MaintenanceLockedBeforeDevelopmentComplete(t *testing.T) {
	_, err := Advance(Development{Progress: 80}, Entry{WorkPhase: constants.WorkPhaseMaintenance, Percentage: 50}, t0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgErrors.ErrPhaseLocked))
}

func TestAdvance_MaintenanceOnlyTouchesMaintenanceCounter(t *testing.T) {
	prev := Maintenance{Development: 100, Progress: 10, CompletedAt: t0}
	out, err := Advance(prev, Entry{WorkPhase: constants.WorkPhaseMaintenance, Percentage: 60}, t1)
	require.NoError(t, err)

	assert.Equal(t, Maintenance{Development: 100, Progress: 60, CompletedAt: t0}, out.Next)
	assert.Equal(t, constants.ProjectStatusOnProgress, out.Status)
	assert.False(t, out.Transitioned)
}

func TestAdvance_DevelopmentBelow100StaysInDevelopment(t *testing.T) {
	out, err := Advance(Development{Progress: 10}, Entry{WorkPhase: constants.WorkPhaseDevelopment, Percentage: 45}, t0)
	require.NoError(t, err)
	assert.Equal(t, Development{Progress: 45}, out.Next)
	assert.Equal(t, constants.ProjectStatusOnProgress, out.Status)
}

func TestAdvance_RejectsOutOfRange(t *testing.T) {
	_, err := Advance(Development{}, Entry{WorkPhase: constants.WorkPhaseDevelopment, Percentage: 101}, t0)
	assert.True(t, errors.Is(err, pkgErrors.ErrOutOfRange))
}

func TestCheckAutoTransition(t *testing.T) {
	at := CheckAutoTransition(constants.WorkPhaseDevelopment, 100)
	assert.True(t, at.ShouldTransition)
	assert.Equal(t, constants.WorkPhaseMaintenance, at.NewPhase)

	assert.False(t, CheckAutoTransition(constants.WorkPhaseDevelopment, 99).ShouldTransition)
	assert.False(t, CheckAutoTransition(constants.WorkPhaseMaintenance, 100).ShouldTransition)
}

func TestValidatePhaseTransition(t *testing.T) {
	dev, maint := constants.WorkPhaseDevelopment, constants.WorkPhaseMaintenance
	tests := []struct {
		name     string
		from, to constants.WorkPhase
		progress int
		wantErr  *pkgErrors.AppError
	}{
		{"same development", dev, dev, 50, pkgErrors.ErrSamePhase},
		{"same maintenance", maint, maint, 100, pkgErrors.ErrSamePhase},
		{"revert", maint, dev, 100, pkgErrors.ErrCannotRevert},
		{"incomplete", dev, maint, 99, pkgErrors.ErrIncompleteDevelopment},
		{"complete", dev, maint, 100, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhaseTransition(tt.from, tt.to, tt.progress)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestAutoAndManualTransitionAgree(t *testing.T) {
	for p := 0; p <= 100; p++ {
		auto := CheckAutoTransition(constants.WorkPhaseDevelopment, p).ShouldTransition
		manual := ValidatePhaseTransition(constants.WorkPhaseDevelopment, constants.WorkPhaseMaintenance, p) == nil
		assert.Equal(t, auto, manual, "progress %d", p)
	}
}

func TestTransition(t *testing.T) {
	next, err := Transition(Development{Progress: 100, Maintenance: 0}, constants.WorkPhaseMaintenance, t0)
	require.NoError(t, err)
	assert.Equal(t, Maintenance{Development: 100, CompletedAt: t0}, next)

	_, err = Transition(Maintenance{Development: 100, CompletedAt: t0}, constants.WorkPhaseDevelopment, t1)
	assert.True(t, errors.Is(err, pkgErrors.ErrCannotRevert))
}

func TestFromProjectAndApplyTo(t *testing.T) {
	p := &model.Project{CurrentPhase: constants.WorkPhaseDevelopment, DevelopmentProgress: 80}
	s := FromProject(p)
	assert.Equal(t, Development{Progress: 80}, s)

	out, err := Advance(s, Entry{WorkPhase: constants.WorkPhaseDevelopment, Percentage: 100}, t0)
	require.NoError(t, err)
	ApplyTo(p, out.Next)

	assert.Equal(t, constants.WorkPhaseMaintenance, p.CurrentPhase)
	assert.Equal(t, 100, p.DevelopmentProgress)
	require.NotNil(t, p.DevelopmentCompletedAt)
	assert.Equal(t, t0, *p.DevelopmentCompletedAt)

	// 再次写入不同完成时间不会覆盖
	ApplyTo(p, Maintenance{Development: 100, CompletedAt: t1})
	assert.Equal(t, t0, *p.DevelopmentCompletedAt)
}

func TestFromProject_LegacyMaintenanceWithoutTimestamp(t *testing.T) {
	p := &model.Project{CurrentPhase: constants.WorkPhaseMaintenance, DevelopmentProgress: 100, MaintenanceProgress: 30}
	s := FromProject(p)
	m, ok := s.(Maintenance)
	require.True(t, ok)
	assert.True(t, m.CompletedAt.IsZero())

	ApplyTo(p, s)
	assert.Nil(t, p.DevelopmentCompletedAt)
}

func TestDeriveOverallStatus(t *testing.T) {
	completed := t0
	tests := []struct {
		name string
		p    model.Project
		want constants.ProjectStatus
	}{
		{"dev 100 not transitioned", model.Project{CurrentPhase: constants.WorkPhaseDevelopment, DevelopmentProgress: 100}, constants.ProjectStatusDone},
		{"dev 99", model.Project{CurrentPhase: constants.WorkPhaseDevelopment, DevelopmentProgress: 99}, constants.ProjectStatusOnProgress},
		{"maintenance 0", model.Project{CurrentPhase: constants.WorkPhaseMaintenance, DevelopmentProgress: 100, DevelopmentCompletedAt: &completed}, constants.ProjectStatusOnProgress},
		{"maintenance 100", model.Project{CurrentPhase: constants.WorkPhaseMaintenance, DevelopmentProgress: 100, MaintenanceProgress: 100, DevelopmentCompletedAt: &completed}, constants.ProjectStatusDone},
		// 存储的 status 字段不参与推导
		{"stale stored status", model.Project{CurrentPhase: constants.WorkPhaseDevelopment, DevelopmentProgress: 40, Status: constants.ProjectStatusDone}, constants.ProjectStatusOnProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.p
			first := DeriveOverallStatus(&p)
			second := DeriveOverallStatus(&p)
			assert.Equal(t, tt.want, first)
			assert.Equal(t, first, second)
			assert.Equal(t, tt.p, p)
		})
	}
}

func TestCalculateOverallProgress(t *testing.T) {
	assert.Equal(t, 80, CalculateOverallProgress(80, 40, constants.WorkPhaseDevelopment))
	assert.Equal(t, 60, CalculateOverallProgress(100, 0, constants.WorkPhaseMaintenance))
	assert.Equal(t, 70, CalculateOverallProgress(100, 25, constants.WorkPhaseMaintenance))
	assert.Equal(t, 61, CalculateOverallProgress(100, 2, constants.WorkPhaseMaintenance))
	assert.Equal(t, 60, CalculateOverallProgress(100, 1, constants.WorkPhaseMaintenance))
	assert.Equal(t, 100, CalculateOverallProgress(100, 100, constants.WorkPhaseMaintenance))
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Not Started", StatusText(constants.WorkPhaseDevelopment, 0))
	assert.Equal(t, "In Progress (40%)", StatusText(constants.WorkPhaseMaintenance, 40))
	assert.Equal(t, "Complete - Ready for Maintenance", StatusText(constants.WorkPhaseDevelopment, 100))
	assert.Equal(t, "Complete", StatusText(constants.WorkPhaseMaintenance, 100))
}
