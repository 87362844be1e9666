package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freema/coauthor/internal/apperror"
	"github.com/freema/coauthor/internal/lifecycle"
	"github.com/freema/coauthor/internal/roster"
)

var validate = validator.New()

// CoAuthorHandler handles the roster endpoints.
type CoAuthorHandler struct {
	controller *lifecycle.Controller
}

// NewCoAuthorHandler creates a new roster handler.
func NewCoAuthorHandler(controller *lifecycle.Controller) *CoAuthorHandler {
	return &CoAuthorHandler{controller: controller}
}

// addCoAuthorRequest is the form submission payload. Both fields are required
// non-empty; a failed submission admits nothing.
type addCoAuthorRequest struct {
	Username string `json:"username" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

// List handles GET /api/v1/coauthors.
func (h *CoAuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"coauthors": h.controller.Snapshot(),
	})
}

// Create handles POST /api/v1/coauthors.
func (h *CoAuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req addCoAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make(map[string]string)
			for _, e := range validationErrs {
				fields[e.Field()] = formatValidationError(e)
			}
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "validation_error",
				"fields": fields,
			})
			return
		}
		writeError(w, http.StatusBadRequest, "validation failed")
		return
	}

	entry := roster.Entry{Username: req.Username, Name: req.Name}
	if err := h.controller.Add(r.Context(), entry); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// Delete handles DELETE /api/v1/coauthors/{username}. Removing an absent
// username succeeds; the roster is simply unchanged.
func (h *CoAuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	if err := h.controller.Remove(r.Context(), username); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeAppError(w http.ResponseWriter, err error) {
	status := apperror.HTTPStatus(err)
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, status, map[string]interface{}{
			"error":   http.StatusText(status),
			"message": appErr.Message,
			"fields":  appErr.Fields,
		})
		return
	}
	writeError(w, status, "internal server error")
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "max":
		return "exceeds maximum length"
	default:
		return "invalid value"
	}
}
