package frontauth

import (
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/frontauth/core/cookie"
	"github.com/dmitrymomot/frontauth/core/envelope"
)

// Service is the web front authentication core: it resolves credentials
// from bearer headers and cookies, orchestrates logins, and maintains the
// authentication cookies. It is stateless across requests; every envelope
// is self-contained.
type Service struct {
	codec   *envelope.Codec
	cookies *cookie.Manager
	login   LoginService

	// Startup-fixed settings, captured once at construction.
	cookieName        string
	bearerHeader      string
	cookieMode        CookieMode
	securePolicy      CookieSecurePolicy
	entryPath         string
	allowedReturnURLs []string

	// Dynamic settings, re-read on each operation.
	options OptionsProvider

	// Optional capabilities. Nil means absent; the orchestrator branches
	// on presence, never on no-op implementations.
	validator     Validator
	autoCreate    AutoCreateService
	autoBind      AutoBindService
	impersonation ImpersonationService

	log *slog.Logger
	now func() time.Time
}

// Option configures optional service capabilities.
type Option func(*Service)

// WithValidator installs a login validator. When present, the backend is
// first called as a dry run and only committed after approval.
func WithValidator(v Validator) Option {
	return func(s *Service) { s.validator = v }
}

// WithAutoCreate installs the auto-registration service.
func WithAutoCreate(a AutoCreateService) Option {
	return func(s *Service) { s.autoCreate = a }
}

// WithAutoBind installs the account auto-binding service.
func WithAutoBind(a AutoBindService) Option {
	return func(s *Service) { s.autoBind = a }
}

// WithImpersonation installs the impersonation service used by
// ImpersonateHandler.
func WithImpersonation(i ImpersonationService) Option {
	return func(s *Service) { s.impersonation = i }
}

// WithOptionsProvider replaces the default static snapshot of the dynamic
// settings with a live provider, enabling configuration hot reload.
func WithOptionsProvider(p OptionsProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.options = p
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates the authentication service. Startup-fixed settings are
// captured from cfg here and never re-read; dynamic settings default to a
// snapshot of cfg unless WithOptionsProvider is given.
func New(codec *envelope.Codec, login LoginService, cfg Config, opts ...Option) (*Service, error) {
	if codec == nil {
		return nil, ErrNilCodec
	}
	if login == nil {
		return nil, ErrNilLoginService
	}

	cookieName := cfg.AuthCookieName
	if cookieName == "" {
		cookieName = ".frontAuth"
	}
	bearerHeader := cfg.BearerHeaderName
	if bearerHeader == "" {
		bearerHeader = "Authorization"
	}
	entryPath := normalizeEntryPath(cfg.EntryPath)

	snapshot := cfg.dynamicOptions()

	s := &Service{
		codec:             codec,
		cookies:           cookie.New(),
		login:             login,
		cookieName:        cookieName,
		bearerHeader:      bearerHeader,
		cookieMode:        cfg.CookieMode,
		securePolicy:      cfg.CookieSecurePolicy,
		entryPath:         entryPath,
		allowedReturnURLs: append([]string(nil), cfg.AllowedReturnURLs...),
		options:           func() DynamicOptions { return snapshot },
		log:               slog.Default(),
		now:               time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// longTermName is the long-term cookie name.
func (s *Service) longTermName() string {
	return s.cookieName + "LT"
}

// cookiePath is the path both cookies are scoped to.
func (s *Service) cookiePath() string {
	if s.cookieMode == CookieModeWebFrontPath {
		return s.entryPath
	}
	return "/"
}

func normalizeEntryPath(p string) string {
	if p == "" {
		return "/c/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
