package model

import (
	"fmt"
)

// ValidationError describes the first field of a record that failed
// validation. Index is the position in a batch, or -1 for a single record.
type ValidationError struct {
	Index  int
	SyncID string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid card at index %d (%s): %s %s", e.Index, e.SyncID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid card: %s %s", e.Field, e.Reason)
}

// Validate checks the structural rules every stored record must satisfy.
func (r *AccountRecord) Validate() error {
	fail := func(field, reason string) error {
		return &ValidationError{Index: -1, SyncID: r.SyncID, Field: field, Reason: reason}
	}
	if r.CreditLimit < 0 {
		return fail("creditLimit", "must not be negative")
	}
	if !validDay(r.BillingDay) {
		return fail("billingDay", "must be between 1 and 28")
	}
	if !validDay(r.PaymentDueDay) {
		return fail("paymentDueDay", "must be between 1 and 28")
	}
	if r.CreatedAt < 0 {
		return fail("createdAt", "must not be negative")
	}
	if r.UpdatedAt < 0 {
		return fail("updatedAt", "must not be negative")
	}
	if r.LastFourDigits != "" && !isFourDigits(r.LastFourDigits) {
		return fail("lastFour", "must be exactly 4 digits")
	}
	return nil
}

// ValidateForCreate applies Validate plus the fields required when a card is
// created through the server rather than synced from a device.
func (r *AccountRecord) ValidateForCreate() error {
	if r.DisplayName == "" {
		return &ValidationError{Index: -1, SyncID: r.SyncID, Field: "name", Reason: "is required"}
	}
	if r.BankName == "" {
		return &ValidationError{Index: -1, SyncID: r.SyncID, Field: "bank", Reason: "is required"}
	}
	return r.Validate()
}

// ValidateBatch validates every record and returns the first failure with its
// index. Nothing in the batch may be applied if this returns an error.
func ValidateBatch(records []*AccountRecord) error {
	for i, r := range records {
		if r == nil {
			return &ValidationError{Index: i, Field: "card", Reason: "is null"}
		}
		if err := r.Validate(); err != nil {
			ve := err.(*ValidationError)
			ve.Index = i
			return ve
		}
	}
	return nil
}

// 0 means unset.
func validDay(d int) bool {
	return d == 0 || (d >= 1 && d <= 28)
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
