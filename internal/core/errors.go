package core

import "errors"

var (
	// ErrProductNotFound is returned when an operation references a product
	// that is not in the catalog.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidCredentials covers a bad email/password pair. The message is
	// deliberately identical for both cases.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotConfirmed is returned on login for accounts awaiting email
	// verification, so the handler can show the verification hint.
	ErrEmailNotConfirmed = errors.New("this account needs email verification, check your inbox for the confirmation link or try signing up with a different email")

	// ErrEmailTaken is returned on signup for an address that already has an
	// account.
	ErrEmailTaken = errors.New("an account with this email already exists")
)
