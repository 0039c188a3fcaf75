package handlers

import (
	"context"

	"github.com/socialcosmos/backend/internal/models"
)

// AccountStore captures the account operations required by the auth and profile handlers.
type AccountStore interface {
	Register(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) bool
	ChangePassword(ctx context.Context, username, current, next string) error
	UpdateBio(ctx context.Context, username, bio string) error
	Profile(ctx context.Context, username string) (models.Profile, error)
	ListUsers(ctx context.Context) []string
}

// PostStore captures the feed operations.
type PostStore interface {
	CreatePost(ctx context.Context, author, content string, image []byte) (models.Post, error)
	ListPosts(ctx context.Context) []models.Post
	RandomPost(ctx context.Context) (models.Post, error)
}

// MessageStore captures conversation operations.
type MessageStore interface {
	SendMessage(ctx context.Context, conversationID, sender, content string) (models.Message, error)
	Conversation(ctx context.Context, conversationID string) []models.Message
}

// GroupStore captures group membership operations.
type GroupStore interface {
	CreateGroup(ctx context.Context, name, creator string) (models.Group, error)
	JoinGroup(ctx context.Context, name, username string) error
	LeaveGroup(ctx context.Context, name, username string) error
	Group(ctx context.Context, name string) (models.Group, error)
	ListGroups(ctx context.Context) []string
}

// FriendStore captures the friend request workflow.
type FriendStore interface {
	SendFriendRequest(ctx context.Context, sender, receiver string) error
	AcceptFriendRequest(ctx context.Context, username, requester string) error
	DeclineFriendRequest(ctx context.Context, username, requester string) error
	Profile(ctx context.Context, username string) (models.Profile, error)
}

// SocialStore is everything the HTTP API needs from the social store.
type SocialStore interface {
	AccountStore
	PostStore
	MessageStore
	GroupStore
	FriendStore
}

// SessionManager issues, validates and revokes authentication tokens for users.
type SessionManager interface {
	Issue(ctx context.Context, username string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Authenticate(ctx context.Context, accessToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string)
}
