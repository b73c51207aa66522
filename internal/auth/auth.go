// Package auth resolves the caller identity for callable requests.
package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey int

const userIDKey contextKey = iota

// Verifier maps a bearer token to a user id.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID string, ok bool)
}

// StaticVerifier checks tokens against a fixed table.
type StaticVerifier struct {
	tokens map[string]string
}

// NewStaticVerifier copies the token table.
func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	copied := make(map[string]string, len(tokens))
	for token, uid := range tokens {
		if token == "" || uid == "" {
			continue
		}
		copied[token] = uid
	}
	return &StaticVerifier{tokens: copied}
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(_ context.Context, token string) (string, bool) {
	uid, ok := v.tokens[token]
	return uid, ok
}

// WithUserID returns a context carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Middleware attaches the verified user id to the request context. Requests
// without a valid token pass through anonymously; callables decide whether
// that is acceptable.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v != nil {
				if token := BearerToken(r); token != "" {
					if uid, ok := v.Verify(r.Context(), token); ok {
						r = r.WithContext(WithUserID(r.Context(), uid))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
