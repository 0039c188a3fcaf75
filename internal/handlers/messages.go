package handlers

import (
	"errors"
	"net/http"
	"slices"

	"github.com/socialcosmos/backend/internal/models"
	"github.com/socialcosmos/backend/internal/social"
)

// MessageHandler serves direct and group conversations. A conversation id
// naming an existing group is restricted to its members. Any other id is the
// inbox of that user: its owner reads every message, while other callers only
// see the messages they sent to it.
type MessageHandler struct {
	Messages MessageStore
	Groups   GroupStore
	Sessions SessionManager
}

// History handles GET /api/v1/messages/{conversation}.
func (h MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	username, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}
	conversation := r.PathValue("conversation")
	isGroup, ok := h.allowed(w, r, conversation, username)
	if !ok {
		return
	}

	messages := h.Messages.Conversation(r.Context(), conversation)
	if !isGroup && conversation != username {
		messages = slices.DeleteFunc(messages, func(m models.Message) bool { return m.Sender != username })
	}
	if messages == nil {
		messages = []models.Message{}
	}
	respondJSON(r.Context(), w, http.StatusOK, conversationResponse{Conversation: conversation, Messages: messages})
}

// Send handles POST /api/v1/messages/{conversation}.
func (h MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	username, r, ok := requireUser(h.Sessions, w, r)
	if !ok {
		return
	}
	conversation := r.PathValue("conversation")
	if _, ok := h.allowed(w, r, conversation, username); !ok {
		return
	}

	var req sendMessageRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	message, err := h.Messages.SendMessage(r.Context(), conversation, username, req.Content)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, message)
}

// allowed reports whether conversation names a group and whether username
// may use it, writing the error response when it may not.
func (h MessageHandler) allowed(w http.ResponseWriter, r *http.Request, conversation, username string) (isGroup, ok bool) {
	if h.Groups == nil {
		return false, true
	}
	group, err := h.Groups.Group(r.Context(), conversation)
	if errors.Is(err, social.ErrUnknownGroup) {
		return false, true
	}
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return false, false
	}
	if !group.HasMember(username) {
		respondError(r.Context(), w, http.StatusForbidden, social.ErrNotAMember.Error())
		return true, false
	}
	return true, true
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"max=4000"`
}

type conversationResponse struct {
	Conversation string           `json:"conversation"`
	Messages     []models.Message `json:"messages"`
}
