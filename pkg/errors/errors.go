package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// 错误码
const (
	CodeSuccess         = 200
	CodeCreated         = 201
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeInternalError   = 500
	CodeDatabaseError   = 501
	CodeAuthError       = 502
	CodeValidationError = 503
)

// 业务原因, 供调用方区分同一 HTTP 状态下的不同拒绝原因
const (
	ReasonValidation            = "VALIDATION"
	ReasonInvalidPercentage     = "INVALID_PERCENTAGE"
	ReasonNotANumber            = "NOT_A_NUMBER"
	ReasonOutOfRange            = "OUT_OF_RANGE"
	ReasonPhaseLocked           = "PHASE_LOCKED"
	ReasonSamePhase             = "SAME_PHASE"
	ReasonCannotRevert          = "CANNOT_REVERT"
	ReasonIncompleteDevelopment = "INCOMPLETE_DEVELOPMENT"
	ReasonNotFound              = "NOT_FOUND"
	ReasonUnauthorized          = "UNAUTHORIZED"
	ReasonMediaUploadFailed     = "MEDIA_UPLOAD_FAILED"
	ReasonPersistenceFailed     = "PERSISTENCE_FAILED"
	ReasonUpstreamFailure       = "UPSTREAM_FAILURE"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同 Code 且同 Reason 视为同一类错误, 使 errors.Is 可以穿透 Wrap
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Reason == t.Reason
}

// HTTPStatus 业务码映射为 HTTP 状态码
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeDatabaseError:
		return http.StatusInternalServerError
	case CodeAuthError:
		return http.StatusUnauthorized
	case CodeValidationError:
		return http.StatusBadRequest
	}
	if e.Code >= 400 && e.Code < 600 {
		return e.Code
	}
	return http.StatusInternalServerError
}

// WithReason 返回带原因的副本
func (e *AppError) WithReason(reason string) *AppError {
	cp := *e
	cp.Reason = reason
	return &cp
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WrapAs 以预定义错误为模板包装底层错误, 保留 Code/Reason
func WrapAs(tpl *AppError, err error) *AppError {
	return &AppError{
		Code:    tpl.Code,
		Reason:  tpl.Reason,
		Message: tpl.Message,
		Err:     err,
	}
}

// As 取出错误链上的 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// 预定义错误
var (
	ErrBadRequest      = New(CodeBadRequest, "请求参数错误").WithReason(ReasonValidation)
	ErrUnauthorized    = New(CodeUnauthorized, "未授权").WithReason(ReasonUnauthorized)
	ErrForbidden       = New(CodeForbidden, "禁止访问")
	ErrNotFound        = New(CodeNotFound, "资源不存在").WithReason(ReasonNotFound)
	ErrConflict        = New(CodeConflict, "资源冲突")
	ErrInternalError   = New(CodeInternalError, "内部服务器错误")
	ErrDatabaseError   = New(CodeDatabaseError, "数据库错误")
	ErrAuthError       = New(CodeAuthError, "认证失败")
	ErrValidationError = New(CodeValidationError, "数据验证失败").WithReason(ReasonValidation)

	ErrInvalidParams        = New(CodeBadRequest, "请求参数错误").WithReason(ReasonValidation)
	ErrInvalidCredentials   = New(CodeAuthError, "用户名或密码错误")
	ErrLDAPConnectionFailed = New(CodeAuthError, "LDAP连接失败")
	ErrUserNotFound         = New(CodeNotFound, "用户不存在").WithReason(ReasonNotFound)
	ErrUserDisabled         = New(CodeForbidden, "用户已禁用")
	ErrInvalidToken         = New(CodeUnauthorized, "无效的Token").WithReason(ReasonUnauthorized)
	ErrTokenExpired         = New(CodeUnauthorized, "Token已过期").WithReason(ReasonUnauthorized)
	ErrRecordNotFound       = New(CodeNotFound, "记录不存在").WithReason(ReasonNotFound)
	ErrRecordExists         = New(CodeConflict, "记录已存在")

	// 进度/阶段相关
	ErrInvalidPercentage     = New(CodeBadRequest, "进度必须在 0 到 100 之间").WithReason(ReasonInvalidPercentage)
	ErrNotANumber            = New(CodeBadRequest, "进度必须是整数").WithReason(ReasonNotANumber)
	ErrOutOfRange            = New(CodeBadRequest, "进度超出 0-100 范围").WithReason(ReasonOutOfRange)
	ErrPhaseLocked           = New(CodeForbidden, "维护阶段尚未解锁, 开发进度必须先达到 100%").WithReason(ReasonPhaseLocked)
	ErrSamePhase             = New(CodeBadRequest, "项目已处于该阶段").WithReason(ReasonSamePhase)
	ErrCannotRevert          = New(CodeBadRequest, "维护阶段不能回退到开发阶段").WithReason(ReasonCannotRevert)
	ErrIncompleteDevelopment = New(CodeForbidden, "开发进度未达到 100%, 不能进入维护阶段").WithReason(ReasonIncompleteDevelopment)
	ErrProjectNotFound       = New(CodeNotFound, "项目不存在").WithReason(ReasonNotFound)
	ErrMediaUploadFailed     = New(CodeInternalError, "图片上传失败, 请重试").WithReason(ReasonMediaUploadFailed)
	ErrPersistenceFailed     = New(CodeInternalError, "保存进度日志失败").WithReason(ReasonPersistenceFailed)
	ErrUpstreamFailure       = New(CodeInternalError, "外部服务不可用").WithReason(ReasonUpstreamFailure)
)
