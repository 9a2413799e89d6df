package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("vehicle no longer available for the requested dates")
	ErrInvalidState      = errors.New("invalid booking state transition")
	ErrInvariantViolated = errors.New("quote totals do not satisfy subtotal/tax/total invariant")
)

// RejectionReason is a stable, machine-readable code for a rejected request.
type RejectionReason string

const (
	ReasonInvalidDateRange          RejectionReason = "invalid_date_range"
	ReasonDifferentReturnNotAllowed RejectionReason = "different_return_not_allowed"
	ReasonExtraQuantityExceeded     RejectionReason = "extra_quantity_exceeded"
	ReasonUnknownExtra              RejectionReason = "unknown_extra"
	ReasonInactive                  RejectionReason = "inactive"
	ReasonNotYetValid               RejectionReason = "not_yet_valid"
	ReasonExpired                   RejectionReason = "expired"
	ReasonExhausted                 RejectionReason = "exhausted"
	ReasonMinDaysNotMet             RejectionReason = "min_days_not_met"
	ReasonMinAmountNotMet           RejectionReason = "min_amount_not_met"
	ReasonUnknownDiscount           RejectionReason = "unknown_discount_code"
	ReasonNegativeCharge            RejectionReason = "negative_charge"
	ReasonCancellationWindowPassed  RejectionReason = "cancellation_window_passed"
	ReasonSettlementAmendment       RejectionReason = "settlement_amendment_required"
	ReasonGroupUnavailable          RejectionReason = "group_unavailable"
	ReasonMissingField              RejectionReason = "missing_field"
	ReasonInvalidMileage            RejectionReason = "invalid_mileage"
	ReasonInvalidActor              RejectionReason = "invalid_actor"
)

var reasonMessages = map[RejectionReason]string{
	ReasonInvalidDateRange:          "The return date must be after the pickup date.",
	ReasonDifferentReturnNotAllowed: "The selected return location does not accept returns from other locations.",
	ReasonExtraQuantityExceeded:     "The requested quantity of an extra exceeds what is available.",
	ReasonUnknownExtra:              "One of the selected extras does not exist.",
	ReasonInactive:                  "This discount code is no longer active.",
	ReasonNotYetValid:               "This discount code is not valid yet.",
	ReasonExpired:                   "This discount code has expired.",
	ReasonExhausted:                 "This discount code has reached its usage limit.",
	ReasonMinDaysNotMet:             "The rental is too short for this discount code.",
	ReasonMinAmountNotMet:           "The booking amount is below the minimum for this discount code.",
	ReasonUnknownDiscount:           "This discount code does not exist.",
	ReasonNegativeCharge:            "Return charges cannot be negative.",
	ReasonCancellationWindowPassed:  "The booking can no longer be cancelled online this close to pickup.",
	ReasonSettlementAmendment:       "The rental was already settled with different charges.",
	ReasonGroupUnavailable:          "The selected vehicle group is not offered.",
	ReasonMissingField:              "A required field is missing.",
	ReasonInvalidMileage:            "The odometer reading is not valid.",
	ReasonInvalidActor:              "The cancelling party must be a customer or staff.",
}

// Message returns the customer-facing text for the reason.
func (r RejectionReason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return string(r)
}

// ValidationError rejects a request before any computation or persistence.
type ValidationError struct {
	Reason RejectionReason
	Detail string
}

func NewValidationError(reason RejectionReason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Is matches any ValidationError carrying the same reason.
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

// Rejection builds a detail-less ValidationError usable as an errors.Is target.
func Rejection(reason RejectionReason) error {
	return &ValidationError{Reason: reason}
}
