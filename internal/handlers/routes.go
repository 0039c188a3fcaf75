package handlers

import (
	"net/http"

	"github.com/socialcosmos/backend/internal/metrics"
	"github.com/socialcosmos/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Accounts: deps.Store, Sessions: deps.Sessions}
	profiles := ProfileHandler{Accounts: deps.Store, Sessions: deps.Sessions}
	posts := PostHandler{Posts: deps.Store, Sessions: deps.Sessions}
	messages := MessageHandler{Messages: deps.Store, Groups: deps.Store, Sessions: deps.Sessions}
	groups := GroupHandler{Groups: deps.Store, Sessions: deps.Sessions}
	friends := FriendHandler{Friends: deps.Store, Sessions: deps.Sessions}

	limited := middleware.Limit(deps.AuthLimiter, "auth", deps.TrustedProxies)

	mux.HandleFunc("GET /healthz", health.Handle)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	mux.Handle("POST /api/v1/auth/register", limited(http.HandlerFunc(auth.Register)))
	mux.Handle("POST /api/v1/auth/login", limited(http.HandlerFunc(auth.Login)))
	mux.HandleFunc("POST /api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.Logout)

	mux.HandleFunc("GET /api/v1/profile", profiles.Me)
	mux.HandleFunc("PUT /api/v1/profile/bio", profiles.UpdateBio)
	mux.Handle("PUT /api/v1/profile/password", limited(http.HandlerFunc(profiles.ChangePassword)))
	mux.HandleFunc("GET /api/v1/users", profiles.ListUsers)
	mux.HandleFunc("GET /api/v1/users/{username}", profiles.Show)

	mux.HandleFunc("GET /api/v1/posts", posts.List)
	mux.HandleFunc("POST /api/v1/posts", posts.Create)
	mux.HandleFunc("GET /api/v1/posts/random", posts.Random)

	mux.HandleFunc("GET /api/v1/messages/{conversation}", messages.History)
	mux.HandleFunc("POST /api/v1/messages/{conversation}", messages.Send)

	mux.HandleFunc("GET /api/v1/groups", groups.List)
	mux.HandleFunc("POST /api/v1/groups", groups.Create)
	mux.HandleFunc("GET /api/v1/groups/{name}", groups.Show)
	mux.HandleFunc("POST /api/v1/groups/{name}/join", groups.Join)
	mux.HandleFunc("POST /api/v1/groups/{name}/leave", groups.Leave)

	mux.HandleFunc("GET /api/v1/friends", friends.List)
	mux.HandleFunc("POST /api/v1/friends/invite", friends.Invite)
	mux.HandleFunc("POST /api/v1/friends/accept", friends.Accept)
	mux.HandleFunc("POST /api/v1/friends/decline", friends.Decline)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Store       SocialStore
	Sessions    SessionManager
	Metrics     *metrics.Collector
	AuthLimiter middleware.RateLimiter
	// TrustedProxies may set X-Forwarded-For for the rate limiter.
	TrustedProxies middleware.TrustedProxies
}
