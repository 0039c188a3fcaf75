package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialcosmos/backend/internal/auth"
	"github.com/socialcosmos/backend/internal/social"
	"github.com/socialcosmos/backend/internal/storage"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresDocumentStore_LoadAndSave(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	store := NewPostgresDocumentStore(testPool)

	if _, err := store.Load(ctx, "groups"); !errors.Is(err, storage.ErrNotExist) {
		t.Fatalf("expected ErrNotExist for missing collection, got %v", err)
	}

	if err := store.Save(ctx, "groups", []byte(`{"book-club":{"creator":"alice","members":["alice"]}}`)); err != nil {
		t.Fatalf("save groups: %v", err)
	}
	if err := store.Save(ctx, "groups", []byte(`{"chess":{"creator":"bob","members":["bob"]}}`)); err != nil {
		t.Fatalf("overwrite groups: %v", err)
	}

	doc, err := store.Load(ctx, "groups")
	if err != nil {
		t.Fatalf("load groups: %v", err)
	}

	reopened := map[string]struct {
		Creator string   `json:"creator"`
		Members []string `json:"members"`
	}{}
	if err := jsoniter.Unmarshal(doc, &reopened); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if _, ok := reopened["book-club"]; ok {
		t.Fatal("expected whole document to be replaced")
	}
	if reopened["chess"].Creator != "bob" {
		t.Fatalf("unexpected document: %s", doc)
	}
}

func TestPostgresDocumentStore_BacksSocialStore(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	backend := NewPostgresDocumentStore(testPool)
	store, err := social.Open(ctx, backend, nil, social.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	for _, name := range []string{"alice", "bob"} {
		if err := store.Register(ctx, name, "password-"+name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if err := store.SendFriendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("send friend request: %v", err)
	}
	if err := store.AcceptFriendRequest(ctx, "bob", "alice"); err != nil {
		t.Fatalf("accept friend request: %v", err)
	}
	if _, err := store.CreatePost(ctx, "alice", "hello from postgres", []byte{1, 2, 3}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	reopened, err := social.Open(ctx, backend, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	friends, err := reopened.Friends(ctx, "alice")
	if err != nil {
		t.Fatalf("friends: %v", err)
	}
	if len(friends) != 1 || friends[0] != "bob" {
		t.Fatalf("expected alice to be friends with bob, got %v", friends)
	}
	posts := reopened.ListPosts(ctx)
	if len(posts) != 1 || string(posts[0].Image) != string([]byte{1, 2, 3}) {
		t.Fatalf("unexpected posts after reopen: %+v", posts)
	}
}

func TestPostgresSessionStore_SaveFindAndDelete(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	store := NewPostgresSessionStore(testPool)

	now := time.Now().UTC()
	session := auth.Session{
		AccessToken:      uuid.NewString(),
		RefreshToken:     uuid.NewString(),
		Username:         "alice",
		AccessExpiresAt:  now.Add(15 * time.Minute),
		RefreshExpiresAt: now.Add(24 * time.Hour),
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	loaded, err := store.FindByRefreshToken(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if loaded.Username != session.Username || !timesClose(loaded.RefreshExpiresAt, session.RefreshExpiresAt, time.Millisecond) {
		t.Fatalf("unexpected session loaded: %+v", loaded)
	}

	byAccess, err := store.FindByAccessToken(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("find session by access token: %v", err)
	}
	if byAccess.RefreshToken != session.RefreshToken {
		t.Fatalf("expected same session by access token, got %+v", byAccess)
	}

	updated := session
	updated.RefreshExpiresAt = session.RefreshExpiresAt.Add(48 * time.Hour)
	if err := store.Save(ctx, updated); err != nil {
		t.Fatalf("update session: %v", err)
	}

	loaded, err = store.FindByRefreshToken(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("find session after update: %v", err)
	}
	if !timesClose(loaded.RefreshExpiresAt, updated.RefreshExpiresAt, time.Millisecond) {
		t.Fatalf("expected updated expiry, got %v", loaded.RefreshExpiresAt)
	}

	if err := store.Delete(ctx, session.RefreshToken); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	if _, err := store.FindByRefreshToken(ctx, session.RefreshToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if _, err := store.FindByAccessToken(ctx, session.AccessToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound by access token after delete, got %v", err)
	}

	if err := store.Delete(ctx, session.RefreshToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound deleting twice, got %v", err)
	}
}

func TestPostgresSessionStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	store := NewPostgresSessionStore(testPool)
	now := time.Now().UTC()

	expired := auth.Session{
		AccessToken: uuid.NewString(), RefreshToken: uuid.NewString(), Username: "alice",
		AccessExpiresAt: now.Add(-2 * time.Hour), RefreshExpiresAt: now.Add(-time.Hour),
	}
	active := auth.Session{
		AccessToken: uuid.NewString(), RefreshToken: uuid.NewString(), Username: "bob",
		AccessExpiresAt: now.Add(time.Minute), RefreshExpiresAt: now.Add(time.Hour),
	}
	for _, session := range []auth.Session{expired, active} {
		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("save session: %v", err)
		}
	}

	removed, err := store.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 expired session removed, got %d", removed)
	}
	if _, err := store.FindByRefreshToken(ctx, active.RefreshToken); err != nil {
		t.Fatalf("expected active session to remain: %v", err)
	}
}

func TestManagerWithPostgresSessionStore(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	manager := auth.NewManager(time.Minute, time.Hour, NewPostgresSessionStore(testPool))
	tokens, err := manager.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	username, err := manager.Authenticate(ctx, tokens.AccessToken)
	if err != nil || username != "alice" {
		t.Fatalf("authenticate: %q %v", username, err)
	}

	if _, err := manager.Refresh(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := manager.Authenticate(ctx, tokens.AccessToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected old access token to be gone, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE collections, sessions"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func timesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
