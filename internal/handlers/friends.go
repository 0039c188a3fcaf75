package handlers

import (
	"context"
	"net/http"
)

// FriendHandler provides the friend request workflow endpoints.
type FriendHandler struct {
	Friends  FriendStore
	Sessions SessionManager
}

// List handles GET /api/v1/friends, returning the caller's friends and
// pending incoming requests.
func (h FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	username, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}

	profile, err := h.Friends.Profile(r.Context(), username)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, friendsResponse{
		Friends:  profile.Friends,
		Requests: profile.FriendRequests,
	})
}

// Invite handles POST /api/v1/friends/invite.
func (h FriendHandler) Invite(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusAccepted, h.Friends.SendFriendRequest)
}

// Accept handles POST /api/v1/friends/accept.
func (h FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.Friends.AcceptFriendRequest)
}

// Decline handles POST /api/v1/friends/decline.
func (h FriendHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.Friends.DeclineFriendRequest)
}

// respond runs apply with the caller as first argument and the named user as
// second, then echoes the caller's updated friend lists.
func (h FriendHandler) respond(w http.ResponseWriter, r *http.Request, status int, apply func(ctx context.Context, caller, other string) error) {
	username, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}

	var req friendRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := apply(r.Context(), username, req.Username); err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}

	profile, err := h.Friends.Profile(r.Context(), username)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, status, friendsResponse{
		Friends:  profile.Friends,
		Requests: profile.FriendRequests,
	})
}

type friendRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

type friendsResponse struct {
	Friends  []string `json:"friends"`
	Requests []string `json:"requests"`
}
