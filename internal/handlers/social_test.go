package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialcosmos/backend/internal/models"
)

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestProfileEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.signUp(t, "alice")
	api.signUp(t, "bob")

	rec := api.do(t, http.MethodPut, "/api/v1/profile/bio", alice, bioRequest{Bio: "hello there"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decodeInto[models.Profile](t, rec)
	assert.Equal(t, "hello there", profile.Bio)
	assert.Equal(t, []string{}, profile.Friends)

	rec = api.do(t, http.MethodGet, "/api/v1/users/bob", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", decodeInto[models.Profile](t, rec).Username)

	rec = api.do(t, http.MethodGet, "/api/v1/users/carol", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/users", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice", "bob"}, decodeInto[usersResponse](t, rec).Users)
}

func TestChangePasswordEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.signUp(t, "alice")

	rec := api.do(t, http.MethodPut, "/api/v1/profile/password", alice, changePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "fresh", Confirmation: "fresh",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/v1/profile/password", alice, changePasswordRequest{
		CurrentPassword: "password-alice", NewPassword: "fresh", Confirmation: "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/v1/profile/password", alice, changePasswordRequest{
		CurrentPassword: "password-alice", NewPassword: "fresh", Confirmation: "fresh",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Username: "alice", Password: "fresh"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.signUp(t, "alice")

	rec := api.do(t, http.MethodGet, "/api/v1/posts/random", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/posts", alice, createPostRequest{Content: "first", Image: []byte{0xff, 0x00}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeInto[postResponse](t, rec)
	assert.Equal(t, "alice", created.Author)
	assert.False(t, created.Anonymous)
	assert.NotEmpty(t, created.ID)

	rec = api.do(t, http.MethodPost, "/api/v1/posts", "", createPostRequest{Content: "from nobody"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.AnonymousName, decodeInto[postResponse](t, rec).Author)

	rec = api.do(t, http.MethodPost, "/api/v1/posts", alice, createPostRequest{Content: "hidden", Anonymous: true})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decodeInto[postResponse](t, rec).Anonymous)

	rec = api.do(t, http.MethodPost, "/api/v1/posts", alice, createPostRequest{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/posts", "bogus-token", createPostRequest{Content: "spoofed"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decodeInto[feedResponse](t, rec)
	require.Len(t, feed.Posts, 3)
	assert.Equal(t, []string{"first", "from nobody", "hidden"},
		[]string{feed.Posts[0].Content, feed.Posts[1].Content, feed.Posts[2].Content})
	assert.Equal(t, []byte{0xff, 0x00}, feed.Posts[0].Image)

	rec = api.do(t, http.MethodGet, "/api/v1/posts/random", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, []string{"first", "from nobody", "hidden"}, decodeInto[postResponse](t, rec).Content)
}

func TestMessageEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.signUp(t, "alice")
	bob := api.signUp(t, "bob")

	rec := api.do(t, http.MethodGet, "/api/v1/messages/bob", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeInto[conversationResponse](t, rec).Messages)

	rec = api.do(t, http.MethodPost, "/api/v1/messages/bob", alice, sendMessageRequest{Content: "hi bob"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", decodeInto[models.Message](t, rec).Sender)

	rec = api.do(t, http.MethodPost, "/api/v1/messages/bob", bob, sendMessageRequest{Content: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/messages/bob", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeInto[conversationResponse](t, rec)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "hi bob", history.Messages[0].Content)

	rec = api.do(t, http.MethodPost, "/api/v1/groups", alice, createGroupRequest{Name: "book-club"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/messages/book-club", bob, sendMessageRequest{Content: "let me in"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/messages/book-club", alice, sendMessageRequest{Content: "welcome"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/messages/book-club", bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDirectMessagesVisibleToRecipientAndSender(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.signUp(t, "alice")
	bob := api.signUp(t, "bob")
	carol := api.signUp(t, "carol")

	rec := api.do(t, http.MethodPost, "/api/v1/messages/bob", alice, sendMessageRequest{Content: "from alice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = api.do(t, http.MethodPost, "/api/v1/messages/bob", carol, sendMessageRequest{Content: "from carol"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	contents := func(token string) []string {
		t.Helper()
		rec := api.do(t, http.MethodGet, "/api/v1/messages/bob", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		out := []string{}
		for _, m := range decodeInto[conversationResponse](t, rec).Messages {
			out = append(out, m.Content)
		}
		return out
	}

	assert.Equal(t, []string{"from alice", "from carol"}, contents(bob))
	assert.Equal(t, []string{"from alice"}, contents(alice))
	assert.Equal(t, []string{"from carol"}, contents(carol))

	dave := api.signUp(t, "dave")
	assert.Empty(t, contents(dave))
}

func TestGroupEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.signUp(t, "alice")
	bob := api.signUp(t, "bob")

	rec := api.do(t, http.MethodPost, "/api/v1/groups", alice, createGroupRequest{Name: "chess"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	group := decodeInto[groupResponse](t, rec)
	assert.Equal(t, "alice", group.Creator)
	assert.Equal(t, []string{"alice"}, group.Members)

	rec = api.do(t, http.MethodPost, "/api/v1/groups", bob, createGroupRequest{Name: "chess"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	for range 2 {
		rec = api.do(t, http.MethodPost, "/api/v1/groups/chess/join", bob, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.ElementsMatch(t, []string{"alice", "bob"}, decodeInto[groupResponse](t, rec).Members)

	rec = api.do(t, http.MethodPost, "/api/v1/groups/go/join", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/groups/chess/leave", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice"}, decodeInto[groupResponse](t, rec).Members)

	rec = api.do(t, http.MethodPost, "/api/v1/groups/chess/leave", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/groups", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"chess"}, decodeInto[groupListResponse](t, rec).Groups)

	rec = api.do(t, http.MethodGet, "/api/v1/groups/chess", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chess", decodeInto[groupResponse](t, rec).Name)
}

func TestFriendEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.signUp(t, "alice")
	bob := api.signUp(t, "bob")
	carol := api.signUp(t, "carol")

	rec := api.do(t, http.MethodPost, "/api/v1/friends/invite", alice, friendRequest{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/friends/invite", alice, friendRequest{Username: "dave"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/friends/invite", alice, friendRequest{Username: "bob"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/v1/friends/invite", carol, friendRequest{Username: "bob"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/friends", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice", "carol"}, decodeInto[friendsResponse](t, rec).Requests)

	rec = api.do(t, http.MethodPost, "/api/v1/friends/accept", bob, friendRequest{Username: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	accepted := decodeInto[friendsResponse](t, rec)
	assert.Equal(t, []string{"alice"}, accepted.Friends)
	assert.Equal(t, []string{"carol"}, accepted.Requests)

	rec = api.do(t, http.MethodPost, "/api/v1/friends/accept", bob, friendRequest{Username: "alice"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/friends/decline", bob, friendRequest{Username: "carol"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeInto[friendsResponse](t, rec).Requests)

	rec = api.do(t, http.MethodGet, "/api/v1/friends", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"bob"}, decodeInto[friendsResponse](t, rec).Friends)

	rec = api.do(t, http.MethodGet, "/api/v1/friends", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusForError(assert.AnError))
}
