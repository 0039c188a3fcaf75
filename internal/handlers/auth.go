package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/socialcosmos/backend/internal/auth"
	"github.com/socialcosmos/backend/internal/logging"
	"github.com/socialcosmos/backend/internal/models"
	"github.com/socialcosmos/backend/internal/social"
)

// AuthHandler implements account registration and session endpoints.
type AuthHandler struct {
	Accounts AccountStore
	Sessions SessionManager
}

// Register handles POST /api/v1/auth/register.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Accounts == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable", "hasAccounts", h.Accounts != nil, "hasSessions", h.Sessions != nil)
		respondError(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	var req registerRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if req.Password != req.Confirmation {
		respondError(ctx, w, http.StatusBadRequest, social.ErrPasswordMismatch.Error())
		return
	}

	if err := h.Accounts.Register(ctx, req.Username, req.Password); err != nil {
		logger.Warn("register failed", "account", req.Username, "error", err)
		respondStoreError(ctx, w, err)
		return
	}

	tokens, err := h.Sessions.Issue(ctx, req.Username)
	if err != nil {
		logger.Error("register failed to issue session", "error", err, "account", req.Username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, authResponse{Username: req.Username, Tokens: tokens})
}

// Login handles POST /api/v1/auth/login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Accounts == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable", "hasAccounts", h.Accounts != nil, "hasSessions", h.Sessions != nil)
		respondError(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	var req loginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if !h.Accounts.Authenticate(ctx, req.Username, req.Password) {
		logger.Warn("login rejected", "account", req.Username)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, req.Username)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "account", req.Username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{Username: req.Username, Tokens: tokens})
}

// Refresh exchanges a refresh token for a new session.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "session service unavailable")
		return
	}

	var req refreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrRefreshTokenExpired) || errors.Is(err, auth.ErrSessionNotFound) {
			status = http.StatusUnauthorized
		}
		logger.Warn("refresh failed", "error", err, "status", status)
		respondError(ctx, w, status, "unable to refresh session")
		return
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{Tokens: tokens})
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Sessions == nil {
		logging.FromContext(ctx).Error("session manager unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "session service unavailable")
		return
	}

	var req refreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	h.Sessions.Revoke(ctx, strings.TrimSpace(req.RefreshToken))
	w.WriteHeader(http.StatusNoContent)
}

type registerRequest struct {
	Username     string `json:"username" validate:"required,max=64"`
	Password     string `json:"password" validate:"required,max=72"`
	Confirmation string `json:"confirmation" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type authResponse struct {
	Username string               `json:"username,omitempty"`
	Tokens   models.SessionTokens `json:"tokens"`
}
