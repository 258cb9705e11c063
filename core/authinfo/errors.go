package authinfo

import "errors"

var (
	// ErrNegativeUserID is returned when creating a user with a negative identifier.
	ErrNegativeUserID = errors.New("user id must not be negative")

	// ErrAnonymousNotEmpty is returned when the anonymous user carries a name or schemes.
	ErrAnonymousNotEmpty = errors.New("anonymous user must have empty name and no schemes")
)
