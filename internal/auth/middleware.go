package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// ErrUnauthenticated is passed to the denial handler for a missing or
// unknown token.
var ErrUnauthenticated = errors.New("unauthenticated")

// Caller identifies the token behind a request.
type Caller struct {
	// TokenHash is the hex digest of the presented token.
	TokenHash string
	DeviceID  string
}

type contextKey string

const callerKey contextKey = "caller"

// WithCaller adds c to ctx.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// GetCaller extracts the caller set by Middleware.
func GetCaller(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerKey).(*Caller)
	return c, ok
}

// ExtractTokenFromHeader extracts the Bearer token from an Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("authorization header must be Bearer token")
	}
	return strings.TrimSpace(parts[1]), nil
}

// Options configures Middleware.
type Options struct {
	Tokens *TokenSet
	// Public paths skip the check.
	Public []string
	// Deny writes the rejection; it receives an error wrapping
	// ErrUnauthenticated.
	Deny   func(w http.ResponseWriter, r *http.Request, err error)
	Logger *slog.Logger
}

// Middleware rejects requests without an accepted token, read from the
// Authorization header or, failing that, X-API-Key. An empty token set
// disables the check so a local single-user server needs no setup.
func Middleware(opts Options) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")
	deny := opts.Deny
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	public := make(map[string]bool, len(opts.Public))
	for _, p := range opts.Public {
		public[p] = true
	}

	if opts.Tokens.Len() == 0 {
		logger.Warn("no API tokens configured, authentication disabled")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Tokens.Len() == 0 || public[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, err := ExtractTokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				if key := r.Header.Get("X-API-Key"); key != "" {
					token, err = key, nil
				}
			}
			if err != nil {
				deny(w, r, fmt.Errorf("%w: %v", ErrUnauthenticated, err))
				return
			}
			if !opts.Tokens.Contains(token) {
				logger.Info("rejected token", "path", r.URL.Path, "remote", r.RemoteAddr)
				deny(w, r, fmt.Errorf("%w: invalid API token", ErrUnauthenticated))
				return
			}

			ctx := WithCaller(r.Context(), &Caller{
				TokenHash: HashToken(token),
				DeviceID:  r.Header.Get("X-Device-ID"),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
