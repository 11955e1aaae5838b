package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the transport and the operator-facing messages.
const (
	CodeValidation    = "VALIDATION_FAILED"
	CodeNotFound      = "NOT_FOUND"
	CodeConnection    = "CONNECTION_ERROR"
	CodeSchema        = "SCHEMA_ERROR"
	CodePermission    = "PERMISSION_ERROR"
	CodeAIUnavailable = "AI_UNAVAILABLE"
	CodeInternal      = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s não encontrado", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewConnectionError reports a transport or DNS failure reaching the store.
func NewConnectionError(err error) error {
	return &DomainError{
		Code:       CodeConnection,
		Message:    "Falha de conexão. Verifique se a URL do banco de dados está correta.",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewSchemaError reports a missing table or collection.
func NewSchemaError(table string, err error) error {
	return &DomainError{
		Code:       CodeSchema,
		Message:    fmt.Sprintf("Tabela %q não encontrada. Verifique se o script de criação do banco foi executado.", table),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"table": table},
		Err:        err,
	}
}

// NewPermissionError reports an access-policy denial.
func NewPermissionError(err error) error {
	return &DomainError{
		Code:       CodePermission,
		Message:    "Erro de permissão (RLS). Crie uma policy que permita acesso à tabela.",
		HTTPStatus: http.StatusForbidden,
		Err:        err,
	}
}

// NewAIUnavailable marks a classification failure. It is logged, never
// returned to the operator.
func NewAIUnavailable(err error) error {
	return &DomainError{
		Code:       CodeAIUnavailable,
		Message:    "classificação automática indisponível",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

