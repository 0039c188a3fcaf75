package handlers

import (
	"context"
	"net/http"

	"github.com/socialcosmos/backend/internal/models"
)

// GroupHandler serves group creation and membership.
type GroupHandler struct {
	Groups   GroupStore
	Sessions SessionManager
}

// List handles GET /api/v1/groups.
func (h GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	_, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, groupListResponse{Groups: h.Groups.ListGroups(r.Context())})
}

// Show handles GET /api/v1/groups/{name}.
func (h GroupHandler) Show(w http.ResponseWriter, r *http.Request) {
	_, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	group, err := h.Groups.Group(r.Context(), name)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, newGroupResponse(name, group))
}

// Create handles POST /api/v1/groups. The caller becomes the creator.
func (h GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	username, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}

	var req createGroupRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	group, err := h.Groups.CreateGroup(r.Context(), req.Name, username)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, newGroupResponse(req.Name, group))
}

// Join handles POST /api/v1/groups/{name}/join.
func (h GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.Groups.JoinGroup)
}

// Leave handles POST /api/v1/groups/{name}/leave.
func (h GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.Groups.LeaveGroup)
}

func (h GroupHandler) membership(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, name, username string) error) {
	username, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if err := apply(r.Context(), name, username); err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}

	group, err := h.Groups.Group(r.Context(), name)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, newGroupResponse(name, group))
}

type createGroupRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type groupResponse struct {
	Name    string   `json:"name"`
	Creator string   `json:"creator"`
	Members []string `json:"members"`
}

type groupListResponse struct {
	Groups []string `json:"groups"`
}

func newGroupResponse(name string, group models.Group) groupResponse {
	members := group.Members
	if members == nil {
		members = []string{}
	}
	return groupResponse{Name: name, Creator: group.Creator, Members: members}
}
