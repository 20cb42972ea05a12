package httpx

import "net/http"

// CORSConfig controls cross-origin behaviour for the browser frontend.
type CORSConfig struct {
	// AllowOrigin is the single origin the frontend runs on. "*" disables
	// credentialed requests, so a concrete origin is expected in prod.
	AllowOrigin      string
	AllowCredentials bool
}

// CORSMiddleware answers preflight requests and stamps the CORS headers on
// every response for the configured origin.
func CORSMiddleware(cfg CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.AllowOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigin)
				w.Header().Set("Vary", "Origin")
				if cfg.AllowCredentials && cfg.AllowOrigin != "*" {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, X-Requested-With")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
