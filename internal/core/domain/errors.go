package domain

import "errors"

// Error kinds. Handlers map them to HTTP status codes.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a domain error with a user-facing message.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation wraps a validator failure as ErrValidation.
func Validation(err error) error {
	return NewError(ErrValidation, err.Error())
}

var (
	ErrUserNotFound       = NewError(ErrNotFound, "User not found")
	ErrBikeNotFound       = NewError(ErrNotFound, "No bike found with that ID")
	ErrBookingNotFound    = NewError(ErrNotFound, "Booking not found")
	ErrEmailTaken         = NewError(ErrValidation, "Email is already registered")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "Incorrect email or password")
	ErrBikeUnavailable    = NewError(ErrConflict, "Bike not found or not available")
	ErrBookingOverlap     = NewError(ErrConflict, "Bike is already booked for the selected dates")
	ErrBookingChanged     = NewError(ErrConflict, "Booking status was changed by another request, please retry")
	ErrNotBikeOwner       = NewError(ErrForbidden, "You can only manage your own bikes")
	ErrNotBookingParty    = NewError(ErrForbidden, "You are not authorized to view this booking")
	ErrInvalidSignature   = NewError(ErrValidation, "Transaction not legit!")
)
