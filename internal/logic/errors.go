package logic

import (
	"errors"
	"fmt"

	"github.com/ghostfund/gfs/internal/model"
)

// ErrProjectNotFound 项目不存在
var ErrProjectNotFound = errors.New("项目不存在")

// ValidationError 输入校验错误，对应HTTP 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StateConflictError 项目状态不允许该操作，对应HTTP 400
// 错误信息携带项目当前状态。
type StateConflictError struct {
	Status model.ProjectStatus
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("项目不在进行中，无法接受出资（当前状态: %s）", e.Status)
}
