package authinfo

import (
	"slices"
	"time"
)

// Scheme records a login mechanism the user has authenticated with.
type Scheme struct {
	// Name is the scheme identifier (e.g. "Basic", an OAuth provider name).
	Name string `json:"name"`

	// LastUsed is the UTC instant of the most recent login through this scheme.
	LastUsed time.Time `json:"lastUsed"`
}

// UserInfo identifies a user. The zero value is the anonymous user.
// Treat instances as immutable: share them freely, never mutate Schemes.
type UserInfo struct {
	// ID is the user identifier. Zero means anonymous.
	ID int64 `json:"userId"`

	// Name is an opaque user name. Empty for anonymous.
	Name string `json:"userName"`

	// Schemes lists login schemes ordered by most recent use.
	// Empty for anonymous users; may be empty for registered ones.
	Schemes []Scheme `json:"schemes"`
}

// Anonymous is the anonymous user.
var Anonymous = UserInfo{}

// NewUserInfo creates a UserInfo, enforcing that the anonymous user
// (zero ID) carries no name and no schemes.
func NewUserInfo(id int64, name string, schemes []Scheme) (UserInfo, error) {
	if id < 0 {
		return UserInfo{}, ErrNegativeUserID
	}
	if id == 0 && (name != "" || len(schemes) > 0) {
		return UserInfo{}, ErrAnonymousNotEmpty
	}
	return UserInfo{ID: id, Name: name, Schemes: slices.Clone(schemes)}, nil
}

// IsAnonymous returns true for the zero-ID user.
func (u UserInfo) IsAnonymous() bool {
	return u.ID == 0
}

// Equal compares two users field by field, schemes included.
func (u UserInfo) Equal(o UserInfo) bool {
	return u.ID == o.ID && u.Name == o.Name && slices.Equal(u.Schemes, o.Schemes)
}

// WithSchemeUsed returns a copy with the named scheme moved to the front
// of the list and its LastUsed set to now. The scheme entry is created if
// missing. Anonymous users are returned unchanged.
func (u UserInfo) WithSchemeUsed(name string, now time.Time) UserInfo {
	if u.IsAnonymous() || name == "" {
		return u
	}

	schemes := make([]Scheme, 0, len(u.Schemes)+1)
	schemes = append(schemes, Scheme{Name: name, LastUsed: now.UTC().Truncate(time.Millisecond)})
	for _, s := range u.Schemes {
		if s.Name != name {
			schemes = append(schemes, s)
		}
	}

	return UserInfo{ID: u.ID, Name: u.Name, Schemes: schemes}
}
