package appMiddleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureOptions returns the security header policy. Development mode skips
// the strict host and SSL checks.
func SecureOptions(isDevelopment bool) secure.Options {
	return secure.Options{
		IsDevelopment:      isDevelopment,
		ContentTypeNosniff: true,
		FrameDeny:          true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
}

// Secure adds security headers to every response.
func Secure(opts secure.Options) func(next http.Handler) http.Handler {
	return secure.New(opts).Handler
}
