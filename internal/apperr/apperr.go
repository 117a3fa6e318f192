// Package apperr classifies failures the portal surfaces to patients.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind is the category of a user-visible failure.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindUnauthenticated Kind = "unauthenticated"
	KindNetworkFailure  Kind = "network_failure"
	KindPolicyViolation Kind = "policy_violation"
	KindInvalid         Kind = "invalid"
	KindInternal        Kind = "internal"
)

// Localized messages shown to patients.
const (
	MsgSignInRequired    = "Vui lòng đăng nhập để xem thông tin điều trị"
	MsgBookingIDMissing  = "Không tìm thấy ID lịch hẹn"
	MsgBookingNotFound   = "Không tìm thấy dữ liệu lịch hẹn"
	MsgBookingLoadFailed = "Không thể lấy thông tin chi tiết lịch hẹn. Vui lòng thử lại sau."
	MsgCancelFailed      = "Hủy lịch hẹn thất bại. Vui lòng thử lại sau."
	MsgTreatmentsFailed  = "Không thể tải dữ liệu điều trị. Vui lòng thử lại sau."
	MsgInternal          = "Đã xảy ra lỗi. Vui lòng thử lại sau."
)

// Error carries a kind, a patient-facing message, and the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind so errors.Is(err, apperr.NotFound("")) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func NotFound(message string) *Error { return New(KindNotFound, message, nil) }

func Unauthenticated() *Error { return New(KindUnauthenticated, MsgSignInRequired, nil) }

func NetworkFailure(message string, cause error) *Error {
	return New(KindNetworkFailure, message, cause)
}

func PolicyViolation(message string) *Error { return New(KindPolicyViolation, message, nil) }

func Invalid(message string) *Error { return New(KindInvalid, message, nil) }

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the patient-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return MsgInternal
}

// WithMessage re-labels err with a page-specific message while keeping its kind.
// Unclassified errors are treated as network failures.
func WithMessage(err error, message string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return New(e.Kind, message, e)
	}
	return NetworkFailure(message, err)
}

// HTTPStatus maps a kind onto a response code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNetworkFailure:
		return http.StatusBadGateway
	case KindPolicyViolation:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Write renders err as a JSON error response.
func Write(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(kind))
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: ErrorDetail{Kind: kind, Message: MessageOf(err)}})
}
