package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/courtlab/gavel/internal/model"
)

// uploadMemoryLimit caps how much of a multipart upload is held in
// memory before spilling to disk. The engine enforces the actual size
// ceiling on the artifact itself.
const uploadMemoryLimit = 32 << 20

// handleUploadExhibit handles POST /v1/sessions/{id}/exhibits.
// The request is multipart/form-data with a "file" part and "side" and
// "uploaded_by" form values.
func (s *GavelServer) handleUploadExhibit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file part")
		return
	}

	exhibit, err := s.engine.UploadExhibit(
		r.Context(),
		r.PathValue("id"),
		model.Side(r.FormValue("side")),
		data,
		header.Filename,
		r.FormValue("uploaded_by"),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, exhibit)
}

// handleListExhibits handles GET /v1/sessions/{id}/exhibits.
func (s *GavelServer) handleListExhibits(w http.ResponseWriter, r *http.Request) {
	exhibits, err := s.engine.ListExhibits(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if exhibits == nil {
		exhibits = []*model.Exhibit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exhibits": exhibits,
		"total":    len(exhibits),
	})
}

// handleMarkExhibit handles POST /v1/exhibits/{id}/mark.
func (s *GavelServer) handleMarkExhibit(w http.ResponseWriter, r *http.Request) {
	exhibit, err := s.engine.MarkExhibit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exhibit)
}

// handleTenderExhibit handles POST /v1/exhibits/{id}/tender.
func (s *GavelServer) handleTenderExhibit(w http.ResponseWriter, r *http.Request) {
	exhibit, err := s.engine.TenderExhibit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exhibit)
}

type ruleExhibitInput struct {
	Decision model.ExhibitState `json:"decision"`
	RuledBy  string             `json:"ruled_by"`
}

// handleRuleExhibit handles POST /v1/exhibits/{id}/rule.
func (s *GavelServer) handleRuleExhibit(w http.ResponseWriter, r *http.Request) {
	var in ruleExhibitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	exhibit, err := s.engine.RuleExhibit(r.Context(), r.PathValue("id"), in.Decision, in.RuledBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, exhibit)
}

// handleExhibitContent handles GET /v1/exhibits/{id}/content. It streams
// the stored artifact back with its detected content type.
func (s *GavelServer) handleExhibitContent(w http.ResponseWriter, r *http.Request) {
	exhibit, data, err := s.engine.ExhibitContent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", exhibit.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exhibit.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
