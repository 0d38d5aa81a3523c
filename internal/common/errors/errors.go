package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode представляет код ошибки
type ErrorCode string

const (
	// Общие ошибки
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeStorage      ErrorCode = "STORAGE_ERROR"

	// Ошибки розыгрышей
	ErrCodeGiveawayNotFound    ErrorCode = "GIVEAWAY_NOT_FOUND"
	ErrCodeEntryNotFound       ErrorCode = "ENTRY_NOT_FOUND"
	ErrCodeGiveawayStillActive ErrorCode = "GIVEAWAY_STILL_ACTIVE"
	ErrCodeGiveawayEnded       ErrorCode = "GIVEAWAY_ENDED"
	ErrCodeNoParticipants      ErrorCode = "NO_PARTICIPANTS"
	ErrCodeInvalidIndex        ErrorCode = "INVALID_INDEX"
	ErrCodeInvalidSelection    ErrorCode = "INVALID_SELECTION"
	ErrCodeAlreadyEntered      ErrorCode = "ALREADY_ENTERED"

	// Ошибки взаимопомощи
	ErrCodeHelpRequestNotFound ErrorCode = "HELP_REQUEST_NOT_FOUND"

	// Ошибки состояния и прав
	ErrCodeInvalidStatus      ErrorCode = "INVALID_STATUS"
	ErrCodeNotAuthorized      ErrorCode = "NOT_AUTHORIZED"
	ErrCodeNotCreator         ErrorCode = "NOT_CREATOR"
	ErrCodeNotAdmin           ErrorCode = "NOT_ADMIN"
	ErrCodeAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"
	ErrCodeNotInitialized     ErrorCode = "NOT_INITIALIZED"
	ErrCodePaused             ErrorCode = "PAUSED"

	// Ошибки средств
	ErrCodeInvalidAmount      ErrorCode = "INVALID_AMOUNT"
	ErrCodeArithmeticOverflow ErrorCode = "ARITHMETIC_OVERFLOW"
	ErrCodeTransferFailed     ErrorCode = "TRANSFER_FAILED"
)

// AppError представляет типизированную ошибку приложения
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Context   map[string]string      `json:"context,omitempty"`
	Stack     []string               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Account   string                 `json:"account,omitempty"`
	Cause     error                  `json:"-"`
}

// Error возвращает строковое представление ошибки
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает причину ошибки
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound проверяет, является ли ошибка ошибкой "не найдено"
func (e *AppError) IsNotFound() bool {
	switch e.Code {
	case ErrCodeNotFound, ErrCodeGiveawayNotFound, ErrCodeEntryNotFound, ErrCodeHelpRequestNotFound:
		return true
	}
	return false
}

// IsValidation проверяет, является ли ошибка ошибкой валидации
func (e *AppError) IsValidation() bool {
	switch e.Code {
	case ErrCodeValidation, ErrCodeInvalidAmount, ErrCodeInvalidIndex, ErrCodeInvalidSelection:
		return true
	}
	return false
}

// IsUnauthorized проверяет, является ли ошибка ошибкой авторизации
func (e *AppError) IsUnauthorized() bool {
	switch e.Code {
	case ErrCodeUnauthorized, ErrCodeNotAuthorized, ErrCodeNotCreator, ErrCodeNotAdmin:
		return true
	}
	return false
}

// IsInternal проверяет, является ли ошибка внутренней ошибкой
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeStorage
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithDetail добавляет детальную информацию к ошибке
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID добавляет ID запроса к ошибке
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// WithAccount добавляет адрес вызывающего к ошибке
func (e *AppError) WithAccount(account string) *AppError {
	e.Account = account
	return e
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     getStackTrace(),
	}
}

// Newf создает новую ошибку с форматированием
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf оборачивает существующую ошибку с форматированием
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// getStackTrace возвращает стек вызовов
func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		// Пропускаем внутренние функции пакета errors
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// Конструкторы для часто используемых ошибок

// NewValidationError создает ошибку валидации
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewNotFoundError создает ошибку "не найдено"
func NewNotFoundError(resource, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// NewGiveawayNotFoundError создает ошибку "розыгрыш не найден"
func NewGiveawayNotFoundError(giveawayID uint64) *AppError {
	return New(ErrCodeGiveawayNotFound, fmt.Sprintf("Giveaway not found: %d", giveawayID)).
		WithDetail("giveaway_id", giveawayID)
}

// NewHelpRequestNotFoundError создает ошибку "запрос помощи не найден"
func NewHelpRequestNotFoundError(requestID uint64) *AppError {
	return New(ErrCodeHelpRequestNotFound, fmt.Sprintf("Help request not found: %d", requestID)).
		WithDetail("request_id", requestID)
}

// NewInvalidStatusError создает ошибку недопустимого состояния
func NewInvalidStatusError(resource string, status interface{}, operation string) *AppError {
	return New(ErrCodeInvalidStatus, fmt.Sprintf("%s in status %v does not allow %s", resource, status, operation)).
		WithDetail("status", status).
		WithDetail("operation", operation)
}

// NewUnauthorizedError создает ошибку авторизации
func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

// NewStorageError создает ошибку хранилища
func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorage, fmt.Sprintf("Storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewOverflowError создает ошибку переполнения
func NewOverflowError(operation string) *AppError {
	return New(ErrCodeArithmeticOverflow, fmt.Sprintf("Arithmetic overflow in %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError приводит ошибку к AppError, в том числе обернутую
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err == nil {
		return nil, false
	}
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf возвращает код ошибки или INTERNAL_ERROR для нетипизированных ошибок
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode проверяет код ошибки
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
