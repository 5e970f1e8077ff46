package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/protomedic/emstags/internal/ai"
	"github.com/protomedic/emstags/internal/buildinfo"
	"github.com/protomedic/emstags/internal/database"
	"github.com/protomedic/emstags/internal/promptrule"
	"github.com/protomedic/emstags/internal/protocols"
	"github.com/protomedic/emstags/internal/tags"
)

// Router wraps the mux router and the stores the admin API works against
type Router struct {
	*mux.Router
	db        *database.DB
	protocols *protocols.Store
	tags      *tags.Store
	rules     *promptrule.Store
	generator *ai.Generator
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, rules *promptrule.Store, generator *ai.Generator) *Router {
	r := &Router{
		Router:    mux.NewRouter(),
		db:        db,
		protocols: protocols.NewStore(db.DB),
		tags:      tags.NewStore(db.DB),
		rules:     rules,
		generator: generator,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Protocol routes; the preview route is registered before the {id}
	// routes so mux does not capture "generate-tags" as an id
	api.HandleFunc("/protocols/generate-tags", r.previewGenerateTags).Methods("POST")
	api.HandleFunc("/protocols", r.listProtocols).Methods("GET")
	api.HandleFunc("/protocols", r.createProtocol).Methods("POST")
	api.HandleFunc("/protocols/{id:[0-9]+}", r.getProtocol).Methods("GET")
	api.HandleFunc("/protocols/{id:[0-9]+}", r.updateProtocol).Methods("PUT")
	api.HandleFunc("/protocols/{id:[0-9]+}", r.deleteProtocol).Methods("DELETE")
	api.HandleFunc("/protocols/{id:[0-9]+}/generate-tags", r.generateProtocolTags).Methods("POST")

	// Tag vocabulary routes
	api.HandleFunc("/tags/suggest", r.suggestTags).Methods("GET")
	api.HandleFunc("/tags", r.listTags).Methods("GET")
	api.HandleFunc("/tags", r.createTag).Methods("POST")
	api.HandleFunc("/tags/{id:[0-9]+}", r.updateTag).Methods("PUT")
	api.HandleFunc("/tags/{id:[0-9]+}", r.deleteTag).Methods("DELETE")

	// Prompt rule routes
	api.HandleFunc("/ai-rules", r.getAIRules).Methods("GET")
	api.HandleFunc("/ai-rules", r.updateAIRules).Methods("PUT")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"commit":     buildinfo.CommitHash,
		"started_at": buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
