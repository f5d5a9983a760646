package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iudanet/jobtrail/pkg/api"
)

// ErrUnreachable оборачивает сетевые ошибки: бэкенд не ответил
var ErrUnreachable = errors.New("gateway unreachable")

// Error is a non-2xx response from the backend
type Error struct {
	Code    string
	Message string
	Details string
	Hint    string
	Status  int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error (%d, %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

func newError(status int, body []byte) *Error {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && (errResp.Message != "" || errResp.Code != "") {
		return &Error{
			Status:  status,
			Code:    errResp.Code,
			Message: errResp.Message,
			Details: errResp.Details,
			Hint:    errResp.Hint,
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Message: msg}
}

// AsError извлекает *Error из цепочки
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUniqueViolation reports a duplicate key rejection (code 23505)
func IsUniqueViolation(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Code == api.CodeUniqueViolation
}

// IsNotFound reports a missing row (PGRST116). A bare 404 means a wrong
// table or gateway URL, not a missing row.
func IsNotFound(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Code == api.CodeNoRows
}

// IsValidation reports a rejection of the payload itself. Constraint
// violations other than uniqueness and malformed values count.
func IsValidation(err error) bool {
	apiErr, ok := AsError(err)
	if !ok {
		return false
	}
	switch apiErr.Code {
	case api.CodeUniqueViolation:
		return false
	case api.CodeNotNull, api.CodeCheckViolation, api.CodeInvalidText:
		return true
	}
	return apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity
}

// IsUnauthorized reports a rejected or missing credential
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// IsTransient reports errors worth retrying later: network failures,
// throttling and server-side faults.
func IsTransient(err error) bool {
	if errors.Is(err, ErrUnreachable) {
		return true
	}
	apiErr, ok := AsError(err)
	if !ok {
		return false
	}
	return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
}
