package handlers

import (
	"errors"
	"net/http"

	"github.com/socialcosmos/backend/internal/logging"
	"github.com/socialcosmos/backend/internal/social"
)

// ProfileHandler serves account profiles and profile edits.
type ProfileHandler struct {
	Accounts AccountStore
	Sessions SessionManager
}

// Me handles GET /api/v1/profile.
func (h ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	username, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}
	h.respondProfile(w, r, username)
}

// Show handles GET /api/v1/users/{username}.
func (h ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	if _, r, ok := requireUser(h.Sessions, w, r); ok {
		h.respondProfile(w, r, r.PathValue("username"))
	}
}

func (h ProfileHandler) respondProfile(w http.ResponseWriter, r *http.Request, username string) {
	profile, err := h.Accounts.Profile(r.Context(), username)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, profile)
}

// ListUsers handles GET /api/v1/users.
func (h ProfileHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	_, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, usersResponse{Users: h.Accounts.ListUsers(r.Context())})
}

// UpdateBio handles PUT /api/v1/profile/bio.
func (h ProfileHandler) UpdateBio(w http.ResponseWriter, r *http.Request) {
	username, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}

	var req bioRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Accounts.UpdateBio(r.Context(), username, req.Bio); err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	h.respondProfile(w, r, username)
}

// ChangePassword handles PUT /api/v1/profile/password.
func (h ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var req changePasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.NewPassword != req.Confirmation {
		respondError(ctx, w, http.StatusBadRequest, social.ErrPasswordMismatch.Error())
		return
	}

	if err := h.Accounts.ChangePassword(ctx, username, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, social.ErrPasswordMismatch) {
			logging.FromContext(ctx).Warn("password change rejected")
			respondError(ctx, w, http.StatusUnauthorized, "current password is incorrect")
			return
		}
		respondStoreError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type usersResponse struct {
	Users []string `json:"users"`
}

type bioRequest struct {
	Bio string `json:"bio" validate:"max=500"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=72"`
	Confirmation    string `json:"confirmation" validate:"required"`
}
