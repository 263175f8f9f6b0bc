package service

import (
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// NewHTTPHandler wraps h with CORS for the given origins and serves HTTP/2
// without TLS alongside HTTP/1.1. An empty origin list allows any origin.
func NewHTTPHandler(h http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowCredentials := true
	for _, o := range allowedOrigins {
		if o == "*" {
			// Browsers reject a wildcard origin on credentialed requests.
			allowCredentials = false
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"Origin",
			"User-Agent",
			"X-Device-ID",
		},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * 60 * 60,
	})

	return h2c.NewHandler(c.Handler(h), &http2.Server{})
}
