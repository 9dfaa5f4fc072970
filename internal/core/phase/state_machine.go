package phase

import (
	"fmt"
	"math"
	"time"

	"project-tracker/internal/model"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

// 维护阶段综合进度权重
const (
	developmentWeight = 0.6
	maintenanceWeight = 0.4
)

// State 项目阶段状态, 只有 Development 与 Maintenance 两种实现
type State interface {
	Phase() constants.WorkPhase
	DevelopmentProgress() int
	MaintenanceProgress() int
	isState()
}

// Development 开发阶段
type Development struct {
	Progress    int
	Maintenance int
}

func (Development) Phase() constants.WorkPhase { return constants.WorkPhaseDevelopment }
func (s Development) DevelopmentProgress() int { return s.Progress }
func (s Development) MaintenanceProgress() int { return s.Maintenance }
func (Development) isState() {}

// Maintenance 维护阶段, CompletedAt 为进入时刻, 之后不再变化
type Maintenance struct {
	Development int
	Progress    int
	CompletedAt time.Time
}

func (Maintenance) Phase() constants.WorkPhase { return constants.WorkPhaseMaintenance }
func (s Maintenance) DevelopmentProgress() int { return s.Development }
func (s Maintenance) MaintenanceProgress() int { return s.Progress }
func (Maintenance) isState() {}

// Entry 一次进度提交
type Entry struct {
	WorkPhase  constants.WorkPhase
	Percentage int
}

// Outcome 状态推进结果
type Outcome struct {
	Next         State
	Transitioned bool
	Status       constants.ProjectStatus
}

// AutoTransition 自动转换判定结果
type AutoTransition struct {
	ShouldTransition bool
	NewPhase         constants.WorkPhase
}

// FromProject 由持久化字段还原阶段状态, 以 DevelopmentCompletedAt 为准
func FromProject(p *model.Project) State {
	if p.DevelopmentCompletedAt != nil {
		return Maintenance{
			Development: p.DevelopmentProgress,
			Progress:    p.MaintenanceProgress,
			CompletedAt: *p.DevelopmentCompletedAt,
		}
	}
	if p.CurrentPhase == constants.WorkPhaseMaintenance {
		// 历史数据: 阶段已切换但未记录完成时间
		return Maintenance{
			Development: p.DevelopmentProgress,
			Progress:    p.MaintenanceProgress,
		}
	}
	return Development{
		Progress:    p.DevelopmentProgress,
		Maintenance: p.MaintenanceProgress,
	}
}

// ApplyTo 把状态写回项目字段, 已有的 DevelopmentCompletedAt 永不覆盖
func ApplyTo(p *model.Project, s State) {
	p.CurrentPhase = s.Phase()
	p.DevelopmentProgress = s.DevelopmentProgress()
	p.MaintenanceProgress = s.MaintenanceProgress()
	if m, ok := s.(Maintenance); ok && p.DevelopmentCompletedAt == nil && !m.CompletedAt.IsZero() {
		completedAt := m.CompletedAt
		p.DevelopmentCompletedAt = &completedAt
	}
}

// Advance 以上一个完整状态为输入计算提交后的状态
func Advance(prev State, e Entry, now time.Time) (Outcome, error) {
	if err := ValidateProgressValue(e.Percentage); err != nil {
		return Outcome{}, err
	}
	if !IsPhaseUnlocked(e.WorkPhase, prev.DevelopmentProgress()) {
		return Outcome{}, pkgErrors.ErrPhaseLocked
	}

	out := Outcome{Status: statusFor(e.Percentage)}
	switch s := prev.(type) {
	case Development:
		switch e.WorkPhase {
		case constants.WorkPhaseDevelopment:
			if at := CheckAutoTransition(s.Phase(), e.Percentage); at.ShouldTransition {
				out.Next = Maintenance{Development: e.Percentage, Progress: s.Maintenance, CompletedAt: now}
				out.Transitioned = true
				return out, nil
			}
			s.Progress = e.Percentage
		case constants.WorkPhaseMaintenance:
			s.Maintenance = e.Percentage
		}
		out.Next = s
	case Maintenance:
		switch e.WorkPhase {
		case constants.WorkPhaseDevelopment:
			s.Development = e.Percentage
		case constants.WorkPhaseMaintenance:
			s.Progress = e.Percentage
		}
		out.Next = s
	}
	return out, nil
}

// Transition 直接阶段切换请求
func Transition(prev State, target constants.WorkPhase, now time.Time) (State, error) {
	if err := ValidatePhaseTransition(prev.Phase(), target, prev.DevelopmentProgress()); err != nil {
		return nil, err
	}
	return Maintenance{
		Development: prev.DevelopmentProgress(),
		Progress:    prev.MaintenanceProgress(),
		CompletedAt: now,
	}, nil
}

// CheckAutoTransition 开发阶段进度到 100 时自动进入维护阶段
func CheckAutoTransition(current constants.WorkPhase, developmentProgress int) AutoTransition {
	if current == constants.WorkPhaseDevelopment && developmentProgress == constants.ProgressMax {
		return AutoTransition{ShouldTransition: true, NewPhase: constants.WorkPhaseMaintenance}
	}
	return AutoTransition{}
}

// ValidatePhaseTransition 校验手动阶段切换
func ValidatePhaseTransition(current, target constants.WorkPhase, developmentProgress int) error {
	if current == target {
		return pkgErrors.ErrSamePhase
	}
	switch {
	case current == constants.WorkPhaseMaintenance && target == constants.WorkPhaseDevelopment:
		return pkgErrors.ErrCannotRevert
	case current == constants.WorkPhaseDevelopment && target == constants.WorkPhaseMaintenance:
		if developmentProgress < constants.ProgressMax {
			return pkgErrors.ErrIncompleteDevelopment
		}
		return nil
	}
	return pkgErrors.New(pkgErrors.CodeBadRequest, "无效的阶段切换").WithReason(pkgErrors.ReasonValidation)
}

// DeriveOverallStatus 当前阶段进度为 100 即 DONE
func DeriveOverallStatus(p *model.Project) constants.ProjectStatus {
	return DeriveStatus(FromProject(p))
}

// DeriveStatus 同 DeriveOverallStatus, 作用于阶段状态
func DeriveStatus(s State) constants.ProjectStatus {
	if s.Phase() == constants.WorkPhaseMaintenance {
		return statusFor(s.MaintenanceProgress())
	}
	return statusFor(s.DevelopmentProgress())
}

// CalculateOverallProgress 开发阶段直接返回开发进度, 维护阶段按 0.6/0.4 加权取整
func CalculateOverallProgress(developmentProgress, maintenanceProgress int, current constants.WorkPhase) int {
	if current == constants.WorkPhaseDevelopment {
		return developmentProgress
	}
	weighted := float64(developmentProgress)*developmentWeight + float64(maintenanceProgress)*maintenanceWeight
	return int(math.Round(weighted))
}

// StatusText 阶段进度描述
func StatusText(p constants.WorkPhase, progress int) string {
	switch {
	case progress == 0:
		return "Not Started"
	case progress < constants.ProgressMax:
		return fmt.Sprintf("In Progress (%d%%)", progress)
	case p == constants.WorkPhaseDevelopment:
		return "Complete - Ready for Maintenance"
	}
	return "Complete"
}

func statusFor(percentage int) constants.ProjectStatus {
	if percentage == constants.ProgressMax {
		return constants.ProjectStatusDone
	}
	return constants.ProjectStatusOnProgress
}
