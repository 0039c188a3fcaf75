package social

import (
	"context"
	"slices"
	"strings"

	"github.com/socialcosmos/backend/internal/models"
)

// CreatePost appends a post to the feed. An empty author publishes anonymously.
func (s *Store) CreatePost(ctx context.Context, author, content string, image []byte) (models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return models.Post{}, ErrEmptyContent
	}

	post := models.Post{
		ID:        s.newID(),
		Author:    author,
		Content:   content,
		CreatedAt: s.now(),
	}
	if len(image) > 0 {
		post.Image = slices.Clone(image)
	}

	err := s.posts.mutate(ctx, func(posts postLog) (postLog, error) {
		return append(posts, post), nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// ListPosts returns every post in the order it was created.
func (s *Store) ListPosts(_ context.Context) []models.Post {
	var out []models.Post
	s.posts.view(func(posts postLog) {
		out = slices.Clone([]models.Post(posts))
	})
	if out == nil {
		out = []models.Post{}
	}
	return out
}

// RandomPost samples one post uniformly; repeated calls draw with replacement.
func (s *Store) RandomPost(_ context.Context) (models.Post, error) {
	var (
		post  models.Post
		found bool
	)
	s.posts.view(func(posts postLog) {
		if len(posts) == 0 {
			return
		}
		s.randMu.Lock()
		idx := s.rand.IntN(len(posts))
		s.randMu.Unlock()
		post, found = posts[idx], true
	})
	if !found {
		return models.Post{}, ErrNoPosts
	}
	return post, nil
}
