package hme

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResult    = errors.New("response has no result")
	ErrEmptyAddress   = errors.New("address is empty")
	ErrEmptyLabel     = errors.New("label is empty")
	ErrEmptyAnonymous = errors.New("anonymous id is empty")
)

// ErrIncompleteAddress means a reservation came back without its
// anonymous id.
var ErrIncompleteAddress = errors.New("reservation has no anonymous id")

// APIError is a failure reported inside a successful HTTP response.
type APIError struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func (e *APIError) Error() string {
	switch {
	case e.ErrorCode == "" && e.ErrorMessage == "":
		return "hide my email request was not successful"
	case e.ErrorCode == "":
		return "hide my email: " + e.ErrorMessage
	}
	return fmt.Sprintf("hide my email: %s: %s", e.ErrorCode, e.ErrorMessage)
}

// ClaimMismatchError is returned when a reservation came back inactive
// or for another address than the one requested.
type ClaimMismatchError struct {
	Requested string
	Active    bool
	Actual    string
}

func (e *ClaimMismatchError) Error() string {
	return fmt.Sprintf("hide my email for %s is inactive/invalid, active: %t, hme: %s",
		e.Requested, e.Active, e.Actual)
}

// OrphanedAddressError is returned by GenerateAndClaim when the address
// was generated but could not be claimed. The address is not reserved;
// it can be claimed again or dropped.
type OrphanedAddressError struct {
	Address string
	Err     error
}

func (e *OrphanedAddressError) Error() string {
	return fmt.Sprintf("generated %s but could not claim it: %v", e.Address, e.Err)
}

func (e *OrphanedAddressError) Unwrap() error { return e.Err }
