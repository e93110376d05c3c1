package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cargoflow/intake/internal/document"
	"github.com/cargoflow/intake/internal/pipeline"
)

// maxUploadBytes bounds multipart uploads; oversized PDFs should arrive via
// the batch path instead.
const maxUploadBytes = 100 << 20 // 100 MB

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status         string `json:"status"`
	MappingVersion string `json:"mapping_version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		MappingVersion: s.mappings.Get().Version,
	})
}

// ExtractResponse wraps the pipeline outcome for one uploaded document.
type ExtractResponse struct {
	Outcome *pipeline.Outcome `json:"outcome"`
	Error   string            `json:"error,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form file \"document\"")
		return
	}
	defer file.Close()

	doc := document.New(uuid.NewString(), header.Filename, "", "")
	if doc.MIMEType == "" {
		writeError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unrecognized document type: %s", header.Filename))
		return
	}

	spooled, err := s.spool(doc.ID, header.Filename, file)
	if err != nil {
		s.logger.Error("spooling upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storing upload failed")
		return
	}
	defer os.Remove(filepath.Join(s.uploadDir, spooled))
	doc.StorageLocation = spooled

	out, err := s.pipeline.Process(r.Context(), doc)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ExtractResponse{Outcome: out})
	case errors.Is(err, pipeline.ErrUnsupportedDocumentType):
		writeJSON(w, http.StatusUnsupportedMediaType, ExtractResponse{Outcome: out, Error: err.Error()})
	case errors.Is(err, pipeline.ErrExtractionFailed), errors.Is(err, pipeline.ErrValidationFailed):
		// Classified, non-fatal: the partial outcome is still useful to the
		// caller for review routing.
		writeJSON(w, http.StatusUnprocessableEntity, ExtractResponse{Outcome: out, Error: err.Error()})
	default:
		s.logger.Error("processing failed", "document_id", doc.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ExtractResponse{Outcome: out, Error: err.Error()})
	}
}

// spool writes the upload under the pipeline's store root and returns the
// path relative to it.
func (s *Server) spool(id, filename string, r io.Reader) (string, error) {
	name := id + filepath.Ext(filename)
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// ReloadResponse reports the mapping version after a reload attempt.
type ReloadResponse struct {
	Status         string `json:"status"`
	MappingVersion string `json:"mapping_version"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.mappings.Reload(); err != nil {
		// The previous config stays active on failure.
		writeJSON(w, http.StatusUnprocessableEntity, ReloadResponse{
			Status:         fmt.Sprintf("reload failed, keeping previous config: %v", err),
			MappingVersion: s.mappings.Get().Version,
		})
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{
		Status:         "ok",
		MappingVersion: s.mappings.Get().Version,
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
