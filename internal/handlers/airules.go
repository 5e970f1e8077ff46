package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// AIRuleRequest is the upsert payload for the prompt rule singleton.
type AIRuleRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

func (r *AIRuleRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return errors.New("name is required")
	}
	if len(r.Name) > 255 {
		return errors.New("name must be at most 255 characters")
	}
	if strings.TrimSpace(r.Instructions) == "" {
		return errors.New("instructions are required")
	}
	return nil
}

// getAIRules returns the active prompt rule, or an empty object when none
// has been configured yet
func (rt *Router) getAIRules(w http.ResponseWriter, req *http.Request) {
	rule, err := rt.rules.Active()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rule == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"rule": nil,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rule": rule,
	})
}

// updateAIRules upserts the singleton rule and invalidates the instructions
// cache
func (rt *Router) updateAIRules(w http.ResponseWriter, req *http.Request) {
	var body AIRuleRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := body.validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	rule, err := rt.rules.UpsertSingleton(body.Name, body.Instructions)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "AI prompt rules updated.",
		"rule":   rule,
	})
}
