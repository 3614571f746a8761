package util

import "errors"

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrEmailRegistered   = errors.New("该邮箱已被注册")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSessionNotFound   = errors.New("SESSION_NOT_FOUND")
	ErrTestIDMismatch    = errors.New("test id does not match active session")
	ErrGenerationFailed  = errors.New("generation service unavailable")
	ErrMalformedResponse = errors.New("generation response not parseable")
	ErrCourseNotFound    = errors.New("course not found")
	ErrNoTestResults     = errors.New("no test results")
	ErrInvalidVideoExt   = errors.New("invalid video extension")
)
