package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"project-tracker/pkg/constants"
)

// enumValidators 业务枚举校验标签与可选值
var enumValidators = map[string][]string{
	"work_phase":    {string(constants.WorkPhaseDevelopment), string(constants.WorkPhaseMaintenance)},
	"project_phase": lo.Map(constants.ProjectPhases, func(p constants.ProjectPhase, _ int) string { return string(p) }),
	"artifact_type": lo.Map(constants.ArtifactTypes, func(t constants.ArtifactType, _ int) string { return string(t) }),
}

// RegisterValidators 注册业务枚举校验, 错误信息中的字段名取 json/form 标签
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	for tag, allowed := range enumValidators {
		allowed := allowed
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return lo.Contains(allowed, fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// FormatValidationError 格式化绑定/校验错误信息
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return strings.Join(lo.Map(validationErrors, func(e validator.FieldError, _ int) string {
			return formatFieldError(e)
		}), "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field '%s' should be %s", typeErr.Field, typeErr.Type.String())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "invalid JSON format"
	}

	return err.Error()
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	if allowed, ok := enumValidators[e.Tag()]; ok {
		return fmt.Sprintf("field '%s' must be one of: %s", field, strings.Join(allowed, " "))
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s characters", field, e.Param())
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", field, e.Param())
	case "email":
		return fmt.Sprintf("field '%s' must be a valid email address", field)
	case "http_url", "url":
		return fmt.Sprintf("field '%s' must be a valid http(s) URL", field)
	case "gte", "lte":
		return fmt.Sprintf("field '%s' must be %s %s", field, lo.Ternary(e.Tag() == "gte", ">=", "<="), e.Param())
	case "datetime":
		return fmt.Sprintf("field '%s' must match layout %s", field, e.Param())
	default:
		return fmt.Sprintf("field '%s' validation failed on '%s' tag", field, e.Tag())
	}
}
