package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daddycoders/oneroof/libs/appwrite"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
)

// SessionHeader carries the session secret on authenticated requests. The
// session is explicit per request; no current-user state lives server-side.
const SessionHeader = "X-Session"

func sessionSecret(r *http.Request) string {
	return r.Header.Get(SessionHeader)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps taxonomy sentinels to responses. Failures leave
// prior state unchanged, so every message tells the caller what to do next.
func writeDomainError(w http.ResponseWriter, err error) {
	var aerr *appwrite.Error
	upstream := errors.As(err, &aerr)

	switch {
	case errors.Is(err, model.ErrAuthentication):
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, model.ErrSession):
		http.Error(w, "no active session; sign in again", http.StatusUnauthorized)
	case errors.Is(err, model.ErrServiceNotFound):
		http.Error(w, "service not found", http.StatusNotFound)
	case errors.Is(err, model.ErrAccountCreation):
		switch {
		case upstream && aerr.Status == http.StatusConflict:
			http.Error(w, "email already registered", http.StatusConflict)
		case upstream:
			http.Error(w, "account creation failed; please try again", http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	case errors.Is(err, model.ErrBookingCancellation):
		if upstream && aerr.Status == http.StatusNotFound {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to cancel booking; please try again", http.StatusBadGateway)
	case errors.Is(err, model.ErrBookingCreation):
		if !upstream {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to book appointment; please try again", http.StatusBadGateway)
	case errors.Is(err, model.ErrCatalogFetch), errors.Is(err, model.ErrTransport):
		http.Error(w, "remote store unavailable; please try again", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type userResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		AccountID: u.AccountID,
		Email:     u.Email,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}

type sessionResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Secret string `json:"secret"`
}

func toSessionResponse(s *model.Session) sessionResponse {
	return sessionResponse{ID: s.ID, UserID: s.UserID, Secret: s.Secret}
}
