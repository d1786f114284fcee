package pprofserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func teapot() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		remote string
		user   string
		pass   string
		want   int
	}{
		{name: "loopback v4", remote: "127.0.0.1:1234", want: http.StatusTeapot},
		{name: "loopback v6", remote: "[::1]:1234", want: http.StatusTeapot},
		{name: "remote without creds configured", remote: "8.8.8.8:1", user: "", pass: "", want: http.StatusUnauthorized},
		{name: "remote wrong password", cfg: Config{User: "u", Pass: "p"}, remote: "8.8.8.8:1", user: "u", pass: "x", want: http.StatusUnauthorized},
		{name: "remote ok", cfg: Config{User: "u", Pass: "p"}, remote: "8.8.8.8:1", user: "u", pass: "p", want: http.StatusTeapot},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
			r.RemoteAddr = tt.remote
			if tt.user != "" {
				r.SetBasicAuth(tt.user, tt.pass)
			}
			w := httptest.NewRecorder()
			guard(tt.cfg)(teapot()).ServeHTTP(w, r)

			require.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				require.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestHandler_ServesIndexToLoopback(t *testing.T) {
	t.Parallel()

	mux := chi.NewRouter()
	mux.Mount("/debug", Handler(Config{}))

	r := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	r.RemoteAddr = "127.0.0.1:1"
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
}
