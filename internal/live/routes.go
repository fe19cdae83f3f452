package live

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/chaincodegen/internal/idgen"
	"github.com/matthewbaird/chaincodegen/internal/pipeline"
)

// Status is the body of the sessions endpoint.
type Status struct {
	Open int `json:"open"`
}

// RegisterRoutes registers the live editing WebSocket and its status
// endpoint on the given router.
func RegisterRoutes(r chi.Router, pl *pipeline.Pipeline) *Manager {
	sessions := NewManager()
	ws := NewHandler(sessions, pl, idgen.Nanoid{})

	r.Route("/v1/live", func(r chi.Router) {
		r.Get("/", ws.ServeHTTP)
		r.Get("/sessions", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if err := json.NewEncoder(w).Encode(Status{Open: sessions.Count()}); err != nil {
				log.Printf("live: encoding status: %v", err)
			}
		})
	})
	return sessions
}
