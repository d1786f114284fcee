package pprofserver

import (
	"net"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Config stores profiling access settings.
type Config struct {
	User string
	Pass string
}

// Handler returns chi's profiler routes, to be mounted at /debug.
// Loopback callers pass through, everyone else needs basic auth; with no
// credentials configured remote access is closed.
func Handler(cfg Config) http.Handler {
	return guard(cfg)(chimw.Profiler())
}

func guard(cfg Config) func(http.Handler) http.Handler {
	creds := map[string]string{}
	if cfg.User != "" && cfg.Pass != "" {
		creds[cfg.User] = cfg.Pass
	}
	basic := chimw.BasicAuth("pprof", creds)

	return func(next http.Handler) http.Handler {
		protected := basic(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isLoopback(r.RemoteAddr) {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func isLoopback(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(strings.TrimSpace(host))
	return ip != nil && ip.IsLoopback()
}
