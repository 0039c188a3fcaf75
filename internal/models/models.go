package models

import "time"

// AnonymousName is shown in place of an empty post author.
const AnonymousName = "Anonymous"

// Account represents a registered SocialCosmos member.
type Account struct {
	Username       string   `json:"username"`
	PasswordHash   string   `json:"password_hash"`
	Bio            string   `json:"bio"`
	Friends        []string `json:"friends"`
	FriendRequests []string `json:"friend_requests"`
}

// Profile is the public view of an account.
type Profile struct {
	Username       string   `json:"username"`
	Bio            string   `json:"bio"`
	Friends        []string `json:"friends"`
	FriendRequests []string `json:"friendRequests"`
}

// Post is a single entry on the public feed. An empty Author marks an anonymous post.
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author,omitempty"`
	Content   string    `json:"content"`
	Image     []byte    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthorName returns the display name for the post author.
func (p Post) AuthorName() string {
	if p.Author == "" {
		return AnonymousName
	}
	return p.Author
}

// Message is one entry of a direct or group conversation.
type Message struct {
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// Group is a named set of members that share a conversation.
type Group struct {
	Creator string   `json:"creator"`
	Members []string `json:"members"`
}

// HasMember reports whether username belongs to the group.
func (g Group) HasMember(username string) bool {
	for _, member := range g.Members {
		if member == username {
			return true
		}
	}
	return false
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
