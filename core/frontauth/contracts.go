package frontauth

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/frontauth/core/authinfo"
)

// UserLoginResult is the outcome of one backend login attempt.
// Success is defined by a non-nil UserInfo.
type UserLoginResult struct {
	// UserInfo is the logged-in user. Nil means failure.
	UserInfo *authinfo.UserInfo

	// FailureCode is a scheme-specific failure code (0 when unset).
	FailureCode int

	// FailureReason is a scheme-specific failure description.
	FailureReason string

	// IsUnregistered indicates the credentials were valid but no local
	// account is bound to them. Triggers auto-bind / auto-create handling.
	IsUnregistered bool
}

// IsSuccess reports whether the attempt produced a user.
func (r UserLoginResult) IsSuccess() bool {
	return r.UserInfo != nil
}

// LoginService is the backend contract every scheme handler honors.
//
// Login is called up to twice per attempt: once with actualLogin=false
// (dry run, when a validator is configured) and once with actualLogin=true
// to commit. Backends should be idempotent on the commit call; a canceled
// request after commit is not rolled back.
type LoginService interface {
	// CreatePayload builds the scheme-specific payload from the request.
	CreatePayload(r *http.Request, scheme string) (any, error)

	// Login authenticates the payload against the scheme.
	Login(ctx context.Context, scheme string, payload any, actualLogin bool) (UserLoginResult, error)
}

// BasicLoginService is the optional user/password capability of a
// LoginService.
type BasicLoginService interface {
	BasicLogin(ctx context.Context, userName, password string, actualLogin bool) (UserLoginResult, error)
}

// Validator approves a successful dry-run login before it is committed.
// Setting an error on the login context (or returning one) aborts the
// login.
type Validator interface {
	ValidateLogin(ctx context.Context, lc *LoginContext) error
}

// AutoCreateService may register an account for an unregistered user when
// nobody is logged in. A (nil, nil) return means "not my responsibility":
// the orchestrator falls back to User.AutoRegistrationDisabled.
type AutoCreateService interface {
	CreateAccountAndLogin(ctx context.Context, lc *LoginContext) (*UserLoginResult, error)
}

// AutoBindService may bind an unregistered scheme identity to the
// currently logged-in account. A (nil, nil) return means "not my
// responsibility": the orchestrator falls back to
// Account.AutoBindingDisabled.
type AutoBindService interface {
	BindAccount(ctx context.Context, lc *LoginContext) (*UserLoginResult, error)
}

// ImpersonationService decides whether the actual user may impersonate the
// target and resolves the target identity. A nil user means impersonation
// is denied.
type ImpersonationService interface {
	Impersonate(ctx context.Context, actual authinfo.UserInfo, targetID int64, targetName string) (*authinfo.UserInfo, error)
}
