package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable machine-readable failure code. Controllers map codes to
// HTTP statuses without reinterpreting them.
type Code string

const (
	CodeExamNotFound         Code = "EXAM_NOT_FOUND"
	CodeQuestionNotFound     Code = "QUESTION_NOT_FOUND"
	CodeAttemptNotFound      Code = "EXAM_ATTEMPT_NOT_FOUND"
	CodeAnswerNotFound       Code = "ANSWER_NOT_FOUND"
	CodeTeacherNotFound      Code = "TEACHER_NOT_FOUND"
	CodeStudentNotFound      Code = "STUDENT_NOT_FOUND"
	CodeClassNotFound        Code = "CLASS_NOT_FOUND"
	CodeSectionNotFound      Code = "SECTION_NOT_FOUND"
	CodeRankingNotFound      Code = "RANKING_NOT_FOUND"
	CodeForbidden            Code = "FORBIDDEN"
	CodeAccessDenied         Code = "ACCESS_DENIED"
	CodeInvalidInput         Code = "INVALID_INPUT"
	CodeValidationError      Code = "VALIDATION_ERROR"
	CodeMissingField         Code = "MISSING_REQUIRED_FIELD"
	CodeInvalidExamState     Code = "INVALID_EXAM_STATE"
	CodeExamPendingApproval  Code = "EXAM_PENDING_APPROVAL"
	CodeNoActiveAssignment   Code = "TEACHER_NO_ACTIVE_ASSIGNMENT"
	CodeNotEnrolled          Code = "NOT_ENROLLED_IN_CLASS"
	CodeExamNotAvailable     Code = "EXAM_NOT_AVAILABLE"
	CodeExamNotActive        Code = "EXAM_NOT_ACTIVE"
	CodeMaxAttempts          Code = "MAX_ATTEMPTS_EXCEEDED"
	CodeAttemptNotInProgress Code = "EXAM_ATTEMPT_NOT_IN_PROGRESS"
	CodeRankingNotEnabled    Code = "RANKING_NOT_ENABLED"

	// Timing validation codes.
	CodeEndBeforeStart        Code = "EXAM_END_BEFORE_START"
	CodeWindowEndBeforeStart  Code = "WINDOW_END_BEFORE_START"
	CodeWindowStartBeforeExam Code = "WINDOW_START_BEFORE_EXAM"
	CodeWindowEndAfterExam    Code = "WINDOW_END_AFTER_EXAM"
	CodeDurationExceedsWindow Code = "EXAM_DURATION_EXCEEDS_WINDOW"
	CodeDurationExceedsTime   Code = "EXAM_DURATION_EXCEEDS_TIME"
	CodeInvalidWindowConfig   Code = "INVALID_WINDOW_CONFIG"

	CodeInternal Code = "INTERNAL_ERROR"
)

// Error is a typed application error carrying a stable code alongside a
// human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the application code from err, or CodeInternal when err is
// not an *Error.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// MessageOf returns the human-readable message, falling back to err.Error().
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus maps a code to the transport status the controllers respond with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeExamNotFound, CodeQuestionNotFound, CodeAttemptNotFound, CodeAnswerNotFound,
		CodeTeacherNotFound, CodeStudentNotFound, CodeClassNotFound, CodeSectionNotFound,
		CodeRankingNotFound:
		return http.StatusNotFound
	case CodeForbidden, CodeAccessDenied:
		return http.StatusForbidden
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
