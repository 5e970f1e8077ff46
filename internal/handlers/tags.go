package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/protomedic/emstags/internal/slug"
	"github.com/protomedic/emstags/internal/tags"
	"gorm.io/gorm"
)

const tagPageSize = 20

// TagRequest is the create/update payload for vocabulary entries. A blank key
// is derived from the label.
type TagRequest struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (r *TagRequest) validate() error {
	r.Label = strings.TrimSpace(r.Label)
	if r.Label == "" {
		return errors.New("label is required")
	}
	if len(r.Label) > 255 {
		return errors.New("label must be at most 255 characters")
	}
	r.Key = strings.TrimSpace(r.Key)
	if r.Key == "" {
		r.Key = slug.Slugify(r.Label)
	}
	if len(r.Key) > 255 {
		return errors.New("key must be at most 255 characters")
	}
	return nil
}

// listTags browses the vocabulary, filtered by the optional q parameter
func (rt *Router) listTags(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query().Get("q")
	limit := tagPageSize
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	result, err := rt.tags.Search(q, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tags": result,
	})
}

// suggestTags backs the autocomplete lookup on the protocol form
func (rt *Router) suggestTags(w http.ResponseWriter, req *http.Request) {
	result, err := rt.tags.Search(req.URL.Query().Get("q"), tagPageSize)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	suggestions := make([]map[string]string, 0, len(result))
	for _, tag := range result {
		suggestions = append(suggestions, map[string]string{
			"key":   tag.Key,
			"label": tag.Label,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tags": suggestions,
	})
}

func (rt *Router) createTag(w http.ResponseWriter, req *http.Request) {
	var body TagRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := body.validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tag, err := rt.tags.Create(body.Key, body.Label)
	if errors.Is(err, tags.ErrKeyInUse) {
		respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Tag key %q is already in use", body.Key))
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, tag)
}

func (rt *Router) updateTag(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid tag id")
		return
	}

	var body TagRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := body.validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tag, err := rt.tags.Update(uint(id), body.Key, body.Label)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "Tag not found")
		return
	}
	if errors.Is(err, tags.ErrKeyInUse) {
		respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Tag key %q is already in use", body.Key))
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, tag)
}

func (rt *Router) deleteTag(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid tag id")
		return
	}

	err = rt.tags.Delete(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "Tag not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "Tag deleted.",
	})
}
