package handlers

import (
	"net/http"
	"time"

	"github.com/socialcosmos/backend/internal/logging"
	"github.com/socialcosmos/backend/internal/models"
)

// PostHandler serves the public feed.
type PostHandler struct {
	Posts    PostStore
	Sessions SessionManager
}

// List handles GET /api/v1/posts. The feed is public.
func (h PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts := h.Posts.ListPosts(r.Context())
	resp := feedResponse{Posts: make([]postResponse, 0, len(posts))}
	for _, post := range posts {
		resp.Posts = append(resp.Posts, newPostResponse(post))
	}
	respondJSON(r.Context(), w, http.StatusOK, resp)
}

// Random handles GET /api/v1/posts/random.
func (h PostHandler) Random(w http.ResponseWriter, r *http.Request) {
	post, err := h.Posts.RandomPost(r.Context())
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, newPostResponse(post))
}

// Create handles POST /api/v1/posts. Requests without a bearer token, or
// with "anonymous" set, are stored without an author.
func (h PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var author string
	if _, present := bearerToken(r); present {
		username, authed, ok := requireUser(h.Sessions, w, r)
		if !ok {
			return
		}
		author, r = username, authed
	}

	var req createPostRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Anonymous {
		author = ""
	}

	post, err := h.Posts.CreatePost(r.Context(), author, req.Content, req.Image)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	logging.FromContext(r.Context()).Info("post created", "post_id", post.ID, "anonymous", author == "")
	respondJSON(r.Context(), w, http.StatusCreated, newPostResponse(post))
}

type createPostRequest struct {
	Content   string `json:"content" validate:"max=10000"`
	Image     []byte `json:"image,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

type postResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Anonymous bool      `json:"anonymous"`
	Content   string    `json:"content"`
	Image     []byte    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type feedResponse struct {
	Posts []postResponse `json:"posts"`
}

func newPostResponse(post models.Post) postResponse {
	return postResponse{
		ID:        post.ID,
		Author:    post.AuthorName(),
		Anonymous: post.Author == "",
		Content:   post.Content,
		Image:     post.Image,
		CreatedAt: post.CreatedAt,
	}
}
