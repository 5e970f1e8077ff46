package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/protomedic/emstags/internal/ai"
	"github.com/protomedic/emstags/internal/models"
	"github.com/protomedic/emstags/internal/protocols"
	"gorm.io/gorm"
)

const maxTagsLimit = 25

// ProtocolRequest is the create/update payload. Tags carries comma/newline
// separated free text; StructuredTags, when present, wins for deriving the
// label array and triggers a relational sync.
type ProtocolRequest struct {
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Tags           string                 `json:"tags"`
	StructuredTags []models.StructuredTag `json:"structured_tags"`
}

// GenerateTagsRequest is the payload for both generation endpoints. Title and
// Description are only read by the preview route.
type GenerateTagsRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	MaxTags       int    `json:"max_tags"`
	Provider      string `json:"provider"`
	OverrideRules string `json:"override_rules"`
}

func (r *GenerateTagsRequest) validate(requireContent bool) error {
	if requireContent {
		if strings.TrimSpace(r.Title) == "" {
			return errors.New("title is required")
		}
		if strings.TrimSpace(r.Description) == "" {
			return errors.New("description is required")
		}
	}
	if r.MaxTags == 0 {
		r.MaxTags = ai.DefaultMaxTags
	}
	if r.MaxTags < 1 || r.MaxTags > maxTagsLimit {
		return fmt.Errorf("max_tags must be between 1 and %d", maxTagsLimit)
	}
	if r.Provider != "" && !ai.IsSupportedProvider(ai.NormalizeProviderCode(r.Provider)) {
		return fmt.Errorf("provider must be one of %s, %s", ai.ProviderOpenAI, ai.ProviderGroq)
	}
	return nil
}

func validateProtocolRequest(req *ProtocolRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return errors.New("title is required")
	}
	if len(title) > 255 {
		return errors.New("title must be at most 255 characters")
	}
	if strings.TrimSpace(req.Description) == "" {
		return errors.New("description is required")
	}
	req.Title = title
	return nil
}

// labelsFor resolves the denormalized label array: structured tags take
// precedence over the free-text field.
func labelsFor(req *ProtocolRequest) ([]string, []models.StructuredTag) {
	structured := ai.NormalizeStructured(req.StructuredTags)
	if len(structured) > 0 {
		return protocols.LabelsFromStructured(structured), structured
	}
	return protocols.NormalizeLabels(req.Tags), nil
}

// listProtocols returns all protocols with the active prompt rules
func (rt *Router) listProtocols(w http.ResponseWriter, req *http.Request) {
	list, err := rt.protocols.ListAll()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"protocols":     list,
		"current_rules": rt.rules.CurrentInstructions(),
	})
}

// createProtocol stores a new protocol and syncs relational tags when
// structured tags were supplied
func (rt *Router) createProtocol(w http.ResponseWriter, req *http.Request) {
	var body ProtocolRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateProtocolRequest(&body); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	labels, structured := labelsFor(&body)
	protocol, err := rt.protocols.Create(body.Title, body.Description, labels)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(structured) > 0 {
		if err := rt.syncStructured(protocol, structured); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	respondJSON(w, http.StatusCreated, protocol)
}

func (rt *Router) getProtocol(w http.ResponseWriter, req *http.Request) {
	protocol, ok := rt.loadProtocol(w, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, protocol)
}

func (rt *Router) updateProtocol(w http.ResponseWriter, req *http.Request) {
	protocol, ok := rt.loadProtocol(w, req)
	if !ok {
		return
	}

	var body ProtocolRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateProtocolRequest(&body); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	labels, structured := labelsFor(&body)
	if err := rt.protocols.Update(protocol, body.Title, body.Description, labels); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(structured) > 0 {
		if err := rt.syncStructured(protocol, structured); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	respondJSON(w, http.StatusOK, protocol)
}

func (rt *Router) deleteProtocol(w http.ResponseWriter, req *http.Request) {
	protocol, ok := rt.loadProtocol(w, req)
	if !ok {
		return
	}
	if err := rt.protocols.Delete(protocol.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": fmt.Sprintf("Protocol %q deleted.", protocol.Title),
	})
}

// previewGenerateTags runs generation for unsaved form content and returns
// the structured tags without persisting anything
func (rt *Router) previewGenerateTags(w http.ResponseWriter, req *http.Request) {
	var body GenerateTagsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := body.validate(true); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	generated, err := rt.generator.GenerateTags(req.Context(), body.Title, body.Description, body.MaxTags, body.OverrideRules, body.Provider)
	if err != nil {
		respondGenerationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tags": generated,
	})
}

// generateProtocolTags runs generation for a stored protocol, persists the
// denormalized label array and syncs the relational linkage
func (rt *Router) generateProtocolTags(w http.ResponseWriter, req *http.Request) {
	protocol, ok := rt.loadProtocol(w, req)
	if !ok {
		return
	}

	var body GenerateTagsRequest
	if req.Body != nil && req.ContentLength != 0 {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if err := body.validate(false); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	generated, err := rt.generator.GenerateTags(req.Context(), protocol.Title, protocol.Description, body.MaxTags, body.OverrideRules, body.Provider)
	if err != nil {
		respondGenerationError(w, err)
		return
	}

	if err := rt.protocols.SaveLabels(protocol, protocols.LabelsFromStructured(generated)); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := rt.syncStructured(protocol, generated); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": fmt.Sprintf("Tags generated for %q.", protocol.Title),
		"tags":   generated,
	})
}

// syncStructured resolves structured tags to vocabulary records and replaces
// the protocol's relational tag set
func (rt *Router) syncStructured(protocol *models.Protocol, structured []models.StructuredTag) error {
	ids, err := rt.tags.EnsureTagsExist(structured)
	if err != nil {
		return err
	}
	return rt.protocols.SyncTags(protocol, ids)
}

func (rt *Router) loadProtocol(w http.ResponseWriter, req *http.Request) (*models.Protocol, bool) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid protocol id")
		return nil, false
	}
	protocol, err := rt.protocols.Get(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "Protocol not found")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return protocol, true
}

// respondGenerationError maps engine failures onto status codes: missing
// secrets are configuration problems, everything else is an upstream or parse
// failure surfaced as a bad gateway
func respondGenerationError(w http.ResponseWriter, err error) {
	var cfgErr *ai.ConfigError
	if errors.As(err, &cfgErr) {
		respondError(w, http.StatusInternalServerError, "Failed to generate tags: "+cfgErr.Error())
		return
	}
	respondError(w, http.StatusBadGateway, "Failed to generate tags: "+err.Error())
}
