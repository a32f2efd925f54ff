package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nexnum/sentinel/core/csrf"
	"github.com/nexnum/sentinel/core/elevation"
	"github.com/nexnum/sentinel/middleware"
	"github.com/nexnum/sentinel/pkg/logger"
)

// headerElevation carries the elevation token on sensitive-action requests.
const headerElevation = "X-Elevation-Token"

const sessionCookie = "session_id"

type healthcheck struct {
	name  string
	probe func(context.Context) error
}

func healthHandler(checks []healthcheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			if err := c.probe(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"status": "unhealthy",
					"failed": c.name,
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}

// sessionHandler bootstraps a browser session: it ensures the session cookie
// exists and returns the CSRF token bound to it.
func sessionHandler(protector *csrf.Protector, production bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			sessionID = c.Value
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				Secure:   production,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int((24 * time.Hour).Seconds()),
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"csrf_token": protector.Issue(sessionID),
		})
	}
}

// whoamiHandler echoes the client context the pipeline resolved, useful for
// integration debugging.
func whoamiHandler(w http.ResponseWriter, r *http.Request) {
	info, _ := middleware.ClientInfoFromContext(r.Context())
	fp, _ := middleware.FingerprintFromContext(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"client":      info,
		"fingerprint": fp.Hash,
	})
}

type transferRequest struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      int64  `json:"amount"`
}

func transferHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.FromAccount == "" || req.ToAccount == "" || req.Amount <= 0 {
			writeError(w, http.StatusBadRequest, "missing transfer fields", "BAD_REQUEST")
			return
		}

		id := uuid.NewString()
		if reqID, ok := middleware.RequestIDFromContext(r.Context()); ok {
			log.Info("transfer accepted",
				logger.RequestID(reqID),
				slog.String("transfer_id", id),
				slog.Int64("amount", req.Amount),
			)
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"success":     true,
			"transfer_id": id,
		})
	}
}

type elevateRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
	Action   string `json:"action"`
}

func elevateHandler(elevator *elevation.Elevator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req elevateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.UserID == "" || req.Password == "" || req.Action == "" {
			writeError(w, http.StatusBadRequest, "missing elevation fields", "BAD_REQUEST")
			return
		}

		token, err := elevator.Require(r.Context(), req.UserID, req.Password, req.Action)
		switch {
		case errors.Is(err, elevation.ErrReauthFailed):
			writeError(w, http.StatusForbidden, "re-authentication failed", "REAUTH_FAILED")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "elevation unavailable", "INTERNAL")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"elevation_token": token,
		})
	}
}

type closeAccountRequest struct {
	UserID string `json:"user_id"`
}

func closeAccountHandler(elevator *elevation.Elevator, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req closeAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		token := r.Header.Get(headerElevation)
		err := elevator.Verify(r.Context(), token, req.UserID, "close-account")
		switch {
		case errors.Is(err, elevation.ErrNotElevated), errors.Is(err, elevation.ErrScopeMismatch):
			writeError(w, http.StatusForbidden, "elevation required", "ELEVATION_REQUIRED")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "elevation unavailable", "INTERNAL")
			return
		}

		// One elevation, one destructive action.
		if err := elevator.Consume(r.Context(), token); err != nil {
			log.Warn("elevation consume failed", logger.Error(err))
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
		"code":    code,
	})
}
