package auth

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/KDigitalAi/Assessments/internal/models"
)

// Handler issues admin tokens. There are no user accounts; the operator
// holds a single password whose bcrypt hash lives in config.
type Handler struct {
	tokens    *Tokens
	adminHash []byte
}

func NewHandler(tokens *Tokens, adminPasswordHash string) *Handler {
	return &Handler{tokens: tokens, adminHash: []byte(adminPasswordHash)}
}

func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Password is required"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.adminHash, []byte(req.Password)); err != nil {
		log.Warn().Str("remote", r.RemoteAddr).Msg("Rejected admin token request")
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid password"})
		return
	}

	token, expires, err := h.tokens.Issue(AdminSubject)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token, ExpiresAt: expires.Unix()})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
