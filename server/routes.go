package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the websocket endpoint, the admin surface and static files.
func Routes(h *Hub, staticDir string) chi.Router {
	router := chi.NewRouter()
	router.Use(serverHeader)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/ws", HandleWS(h))
	router.Get("/admin/config", HandleAdminConfig(h))
	router.Post("/admin/config", HandleAdminConfig(h))
	router.Get("/metrics", HandleMetrics(h))
	router.Get("/sessions", HandleSessions(h))
	router.Get("/sessions/{id}", HandleSession(h))
	if staticDir != "" {
		router.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}
	return router
}

func serverHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "flapduel")
		next.ServeHTTP(w, r)
	})
}
