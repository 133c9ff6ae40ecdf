// internal/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Class groups errors by the pipeline stage that raised them.
type Class string

const (
	ClassValidation Class = "validation"
	ClassSchema     Class = "schema"
	ClassGeneration Class = "generation"
	ClassRender     Class = "render"
	ClassDelivery   Class = "delivery"
	ClassPayment    Class = "payment"
)

// Kind is the specific failure within a class.
type Kind string

const (
	// validation
	KindMissingFields    Kind = "missing_fields"
	KindMissingPhone     Kind = "missing_phone"
	KindInvalidPhone     Kind = "invalid_phone"
	KindDocumentNotFound Kind = "document_not_found"
	KindPlanNotFound     Kind = "plan_not_found"

	// schema
	KindMalformed   Kind = "malformed"
	KindMissingRoot Kind = "missing_root"

	// generation
	KindRateLimited   Kind = "rate_limited"
	KindTimeout       Kind = "timeout"
	KindInvalidSchema Kind = "invalid_schema"

	// render
	KindIO Kind = "io"

	// delivery
	KindInvalidRecipient Kind = "invalid_recipient"

	// payment
	KindIncompleteProfile Kind = "incomplete_profile"
	KindInvalidPayment    Kind = "invalid_payment"

	// shared by generation, delivery and payment
	KindProviderError Kind = "provider_error"
)

// Error is the single tagged error shape every collaborator boundary
// re-raises into. Handlers translate it to an HTTP status with one table
// instead of per-call-site heuristics.
type Error struct {
	Class   Class
	Kind    Kind
	Message string
	Fields  []string // populated for KindMissingFields
	Err     error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(kind Kind, message string, fields ...string) *Error {
	return &Error{Class: ClassValidation, Kind: kind, Message: message, Fields: fields}
}

func Schema(kind Kind, message string, err error) *Error {
	return &Error{Class: ClassSchema, Kind: kind, Message: message, Err: err}
}

func Generation(kind Kind, message string, err error) *Error {
	return &Error{Class: ClassGeneration, Kind: kind, Message: message, Err: err}
}

func Render(kind Kind, message string, err error) *Error {
	return &Error{Class: ClassRender, Kind: kind, Message: message, Err: err}
}

func Delivery(kind Kind, message string, err error) *Error {
	return &Error{Class: ClassDelivery, Kind: kind, Message: message, Err: err}
}

func Payment(kind Kind, message string, err error) *Error {
	return &Error{Class: ClassPayment, Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	for errors.As(err, &ae) {
		if ae.Kind == kind {
			return true
		}
		err = ae.Err
		ae = nil
	}
	return false
}

// HTTPStatus is the single error-to-status translation table.
// Client-caused failures map to 400, upstream AI throttling to 429,
// everything else to 500.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	if ae.Kind == KindRateLimited {
		return http.StatusTooManyRequests
	}
	if ae.Kind == KindPlanNotFound {
		return http.StatusNotFound
	}
	if ae.Class == ClassValidation {
		return http.StatusBadRequest
	}
	if ae.Class == ClassPayment &&
		(ae.Kind == KindIncompleteProfile || ae.Kind == KindInvalidPayment) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Message returns the client-safe message for err. Raw collaborator errors
// never reach handlers, but if one slips through it is masked.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if len(ae.Fields) > 0 {
			return fmt.Sprintf("%s: %s", ae.Message, strings.Join(ae.Fields, ", "))
		}
		return ae.Message
	}
	return "internal error"
}

// FieldsOf returns the missing/invalid field list when err is a
// validation error, nil otherwise.
func FieldsOf(err error) []string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}
