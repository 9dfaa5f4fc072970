// Package phone 印尼手机号归一化
package phone

import (
	"regexp"
	"strings"

	pkgErrors "project-tracker/pkg/errors"
)

const countryCode = "62"

var (
	nonDigit  = regexp.MustCompile(`\D`)
	canonical = regexp.MustCompile(`^62\d{8,15}$`)
)

// ErrInvalidPhone 号码格式错误
var ErrInvalidPhone = pkgErrors.New(pkgErrors.CodeBadRequest, "手机号格式无效, 需为 62 开头的 10-17 位数字").WithReason(pkgErrors.ReasonValidation)

// Normalize 去掉非数字字符, 0 开头替换为 62, 缺少国家码时补齐
func Normalize(raw string) (string, error) {
	digits := nonDigit.ReplaceAllString(strings.TrimSpace(raw), "")
	switch {
	case digits == "":
		return "", ErrInvalidPhone
	case strings.HasPrefix(digits, "0"):
		digits = countryCode + digits[1:]
	case !strings.HasPrefix(digits, countryCode):
		digits = countryCode + digits
	}
	if !canonical.MatchString(digits) {
		return "", ErrInvalidPhone
	}
	return digits, nil
}
