package frontauth

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/frontauth/core/authinfo"
)

type stateCtxKey struct{}

// state is the request-scoped authentication slot. It is written once by
// the first resolver call on the request (or by a login commit) and read
// by everything downstream, so no thread-local or process-global storage
// is involved.
type state struct {
	front    authinfo.FrontInfo
	source   credentialSource
	resolved bool
}

// credentialSource records where the cached info came from. Sliding
// expiration only ever applies to session-cookie-derived info.
type credentialSource int

const (
	sourceNone credentialSource = iota
	sourceBearer
	sourceCookie
	sourceLongTerm
	sourceSynthesized
)

// Middleware installs the request-scoped authentication slot. Handlers
// running below it share one resolution per request; without it every
// EnsureAuthenticationInfo call re-resolves.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), stateCtxKey{}, &state{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func stateFrom(r *http.Request) *state {
	st, _ := r.Context().Value(stateCtxKey{}).(*state)
	return st
}

// commit replaces the request slot content after a write operation.
func (s *Service) commit(r *http.Request, front authinfo.FrontInfo, src credentialSource) {
	if st := stateFrom(r); st != nil {
		st.front = front
		st.source = src
		st.resolved = true
	}
}
