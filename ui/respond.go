package ui

import (
	"encoding/json"
	"net/http"

	"marketmapper/internal/errors"
)

// statusForCode maps the error taxonomy onto HTTP status codes
func statusForCode(code string) int {
	switch code {
	case errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeUnauthorized:
		return http.StatusUnauthorized
	case errors.CodeInsufficientCredits:
		return http.StatusPaymentRequired
	case errors.CodeNotFound, errors.CodeAgentNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.log.Error("[UI] response encoding failed: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	if status >= 500 {
		a.log.Error("[UI] request failed: %v", err)
	}
	a.writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": err.Error(),
		},
	})
}
