package social

import (
	"context"
	"slices"
	"strings"

	"github.com/socialcosmos/backend/internal/models"
)

// SendMessage appends a message to the conversation keyed by conversationID,
// which is either a peer username or a group name. Missing conversations are
// created on first use.
func (s *Store) SendMessage(ctx context.Context, conversationID, sender, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, ErrEmptyContent
	}
	if !validName(conversationID) {
		return models.Message{}, ErrInvalidName
	}

	message := models.Message{Sender: sender, Content: content, SentAt: s.now()}
	err := s.messages.mutate(ctx, func(convs conversations) (conversations, error) {
		convs[conversationID] = append(convs[conversationID], message)
		return convs, nil
	})
	if err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// Conversation returns the ordered history of conversationID, empty when none exists.
func (s *Store) Conversation(_ context.Context, conversationID string) []models.Message {
	var out []models.Message
	s.messages.view(func(convs conversations) {
		out = slices.Clone(convs[conversationID])
	})
	if out == nil {
		out = []models.Message{}
	}
	return out
}
