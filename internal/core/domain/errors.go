package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAbsent             = errors.New("key not set")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrEmailTaken         = errors.New("email already registered")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCheckoutNotFound   = errors.New("checkout not found")
	ErrDuplicateReview    = errors.New("product already reviewed by user")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidTransition  = errors.New("invalid checkout transition")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrForbidden          = errors.New("access forbidden")
	ErrTokenExpired       = errors.New("token expired")
	ErrNotificationFailed = errors.New("notification could not be sent")
	ErrPaymentFailed      = errors.New("payment provider error")
	ErrSkipped            = errors.New("operation skipped")
)

// ValidationError carries a user-facing message for rejected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid returns a ValidationError with the given message.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// SkipReason names the missing prerequisite that turned an operation into a
// no-op.
type SkipReason string

const (
	SkipNoToken             SkipReason = "no_token"
	SkipTokenMalformed      SkipReason = "token_malformed"
	SkipTokenExpired        SkipReason = "token_expired"
	SkipNoUserCollection    SkipReason = "no_user_collection"
	SkipUserNotFound        SkipReason = "user_not_found"
	SkipNoProductCollection SkipReason = "no_product_collection"
	SkipNoOrderCollection   SkipReason = "no_order_collection"
	SkipCartLineNotFound    SkipReason = "cart_line_not_found"
	SkipWishlistNotFound    SkipReason = "wishlist_entry_not_found"
)

// SkipError reports an operation that did nothing because a prerequisite was
// absent. It matches ErrSkipped with errors.Is.
type SkipError struct {
	Op     string
	Reason SkipReason
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: skipped (%s)", e.Op, e.Reason)
}

func (e *SkipError) Is(target error) bool {
	return target == ErrSkipped
}

// Skip returns a SkipError for op.
func Skip(op string, reason SkipReason) error {
	return &SkipError{Op: op, Reason: reason}
}

// SkipReasonOf extracts the reason from err, or "" when err is not a skip.
func SkipReasonOf(err error) SkipReason {
	var se *SkipError
	if errors.As(err, &se) {
		return se.Reason
	}
	return ""
}
