package phase

import (
	"strconv"
	"strings"

	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

// ParseProgressValue 解析原始输入 (表单字符串或 JSON 数字) 为整数进度并校验范围
func ParseProgressValue(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, pkgErrors.ErrNotANumber
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, pkgErrors.WrapAs(pkgErrors.ErrNotANumber, err)
	}
	if err := ValidateProgressValue(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidateProgressValue 进度必须在 [0,100]
func ValidateProgressValue(v int) error {
	if v < constants.ProgressMin || v > constants.ProgressMax {
		return pkgErrors.ErrOutOfRange
	}
	return nil
}

// IsPhaseUnlocked 开发阶段始终可写, 维护阶段要求开发进度恰为 100
func IsPhaseUnlocked(target constants.WorkPhase, developmentProgress int) bool {
	switch target {
	case constants.WorkPhaseDevelopment:
		return true
	case constants.WorkPhaseMaintenance:
		return developmentProgress == constants.ProgressMax
	}
	return false
}
