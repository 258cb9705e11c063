package frontauth

import "errors"

// Stable error identifiers surfaced to clients. These are a wire contract
// shared with the client SDK, do not rename.
const (
	// ErrIDReturnXOrCaller: exactly one of returnUrl / callerOrigin must be
	// set when starting a login.
	ErrIDReturnXOrCaller = "ReturnXOrCaller"

	// ErrIDDisallowedReturnUrl: returnUrl does not match any allowed prefix.
	ErrIDDisallowedReturnUrl = "DisallowedReturnUrl"

	// ErrIDLoginWhileImpersonation: a login other than
	// impersonate-actual-user was attempted during impersonation.
	ErrIDLoginWhileImpersonation = "LoginWhileImpersonation"

	// ErrIDAutoBindingDisabled: the backend reported an unregistered user
	// for a logged-in account and no auto-binding service handled it.
	ErrIDAutoBindingDisabled = "Account.AutoBindingDisabled"

	// ErrIDAutoRegistrationDisabled: the backend reported an unregistered
	// user and no auto-create service handled it.
	ErrIDAutoRegistrationDisabled = "User.AutoRegistrationDisabled"

	// ErrIDInternalError: the backend broke its contract (no user, no
	// failure information).
	ErrIDInternalError = "InternalError"
)

var (
	// ErrNilCodec is returned when constructing a service without an envelope codec.
	ErrNilCodec = errors.New("envelope codec is required")

	// ErrNilLoginService is returned when constructing a service without a login service.
	ErrNilLoginService = errors.New("login service is required")

	// ErrBasicLoginNotSupported is returned when the basic login handler is
	// used with a login service that doesn't implement BasicLoginService.
	ErrBasicLoginNotSupported = errors.New("login service does not support basic login")

	// ErrImpersonationNotSupported is returned when the impersonation
	// handler is used without an impersonation service.
	ErrImpersonationNotSupported = errors.New("impersonation service is not configured")
)
