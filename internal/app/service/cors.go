package service

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/sjonq/sjonq-go/internal/app/config"
)

// CORSMiddleware applies CORS headers based on the provided configuration
func CORSMiddleware(handler http.Handler, cfg config.CORSConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip CORS handling if disabled
		if !cfg.Enabled {
			handler.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")

		// If no Origin is present, continue as normal
		if origin == "" {
			handler.ServeHTTP(w, r)
			return
		}

		if !cfg.IsOriginAllowed(origin) {
			http.Error(w, "CORS: Origin not allowed", http.StatusForbidden)
			return
		}

		// Always use the actual origin (not "*") when credentials are allowed
		if cfg.AllowCredentials && origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			if slices.Contains(cfg.AllowOrigins, "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
		}

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			if len(cfg.AllowMethods) > 0 {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", "))
			}

			// If the client requested specific headers, respond to those
			requestHeaders := r.Header.Get("Access-Control-Request-Headers")
			if requestHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", requestHeaders)
			} else if len(cfg.AllowHeaders) > 0 {
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
			}

			if cfg.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}

			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			// Respond to preflight with 204 No Content
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// For actual requests, set expose headers if any
		if len(cfg.ExposeHeaders) > 0 {
			w.Header().Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
		}

		if cfg.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		handler.ServeHTTP(w, r)
	})
}
