package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Abudabih/FbAutomationv1/internal/bot"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
	"github.com/Abudabih/FbAutomationv1/internal/obs"
)

// adminList accepts either a single string or an array of strings, the
// way the original dashboard submitted adminID.
type adminList []string

func (l *adminList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*l = adminList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = adminList(many)
	return nil
}

type loginRequest struct {
	AppState json.RawMessage `json:"appState"`
	Prefix   string          `json:"prefix"`
	AdminID  adminList       `json:"adminID"`
}

// credentialPayload normalizes appState: either inline JSON or a JSON
// string containing JSON.
func (r loginRequest) credentialPayload() (messenger.Credential, error) {
	raw := r.AppState
	if len(raw) == 0 {
		return nil, errors.New("appState is required")
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		raw = json.RawMessage(inner)
	}
	if !json.Valid(raw) {
		return nil, errors.New("appState is not valid JSON")
	}
	return messenger.Credential(raw), nil
}

// Login performs a manual account login with optional per-account prefix
// and admin overrides.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cred, err := req.credentialPayload()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid Cookies Format")
		return
	}

	res, err := a.mgr.Bootstrap(r.Context(), cred, req.Prefix, []string(req.AdminID), "")
	if err != nil {
		var loginErr *bot.LoginError
		if errors.As(err, &loginErr) {
			respondError(w, http.StatusUnauthorized, "Login failed: check your credentials.")
			return
		}
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if res.AlreadyActive {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"id":      res.AccountID,
			"message": "Account is already active.",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      res.AccountID,
		"name":    res.DisplayName,
	})
}

// Logout stops a running account.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userID"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userID is required")
		return
	}

	if err := a.mgr.Stop(r.Context(), req.UserID); err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Account not found or not active")
			return
		}
		respondError(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Account stopped successfully",
	})
}

// Stats reports the live session set and command count.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	accounts := a.mgr.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"activeUsers":     len(accounts),
		"totalCommands":   a.mgr.CommandCount(),
		"runningAccounts": accounts,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// Logs returns the most recent system log lines.
func (a *API) Logs(w http.ResponseWriter, r *http.Request) {
	lines := obs.Tail(50)
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"logs":  lines,
		"count": len(lines),
	})
}

// Healthz reports liveness and version.
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "bot-api",
		"version": a.version,
	})
}
