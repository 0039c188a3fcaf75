// Package social implements the SocialCosmos store: accounts and the friend
// graph, the post feed, conversations and groups. Each of the four collections
// is persisted as a single document through a storage.Backend.
package social

import (
	"context"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialcosmos/backend/internal/metrics"
	"github.com/socialcosmos/backend/internal/models"
	"github.com/socialcosmos/backend/internal/storage"
)

// Collection names as persisted by the backend.
const (
	CollectionAccounts = "accounts"
	CollectionPosts    = "posts"
	CollectionMessages = "messages"
	CollectionGroups   = "groups"

	// legacyCollectionAccounts is where accounts lived before the store
	// adopted the accounts collection.
	legacyCollectionAccounts = "user_profiles"
)

type (
	accountSet    map[string]models.Account
	postLog       []models.Post
	conversations map[string][]models.Message
	groupSet      map[string]models.Group
)

// Store owns the accounts, posts, messages and groups collections.
type Store struct {
	accounts *collection[accountSet]
	posts    *collection[postLog]
	messages *collection[conversations]
	groups   *collection[groupSet]

	bcryptCost int
	now        func() time.Time
	newID      func() string

	randMu sync.Mutex
	rand   *rand.Rand
}

// Option customises a Store.
type Option func(*Store)

// WithBcryptCost overrides the bcrypt cost used for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Store) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithClock overrides the time source used for post and message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRandSource seeds the generator behind RandomPost.
func WithRandSource(src rand.Source) Option {
	return func(s *Store) {
		if src != nil {
			s.rand = rand.New(src)
		}
	}
}

// WithIDGenerator overrides post identifier generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// Open builds a Store and loads every collection from backend.
func Open(ctx context.Context, backend storage.Backend, collector *metrics.Collector, opts ...Option) (*Store, error) {
	s := &Store{
		accounts: &collection[accountSet]{
			name: CollectionAccounts, backend: backend, metrics: collector,
			legacyName: legacyCollectionAccounts,
			decode:     decodeAccounts,
			clone:      cloneAccounts,
			normalize:  func(a accountSet) accountSet { return orEmptyMap(a) },
		},
		posts: &collection[postLog]{
			name: CollectionPosts, backend: backend, metrics: collector,
			clone:     func(p postLog) postLog { return slices.Clone(p) },
			normalize: func(p postLog) postLog { return p },
		},
		messages: &collection[conversations]{
			name: CollectionMessages, backend: backend, metrics: collector,
			clone:     cloneConversations,
			normalize: func(c conversations) conversations { return orEmptyMap(c) },
		},
		groups: &collection[groupSet]{
			name: CollectionGroups, backend: backend, metrics: collector,
			clone:     cloneGroups,
			normalize: func(g groupSet) groupSet { return orEmptyMap(g) },
		},
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
		rand:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(s)
	}

	loaders := []func(context.Context) error{s.accounts.load, s.posts.load, s.messages.load, s.groups.load}
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func orEmptyMap[M ~map[K]V, K comparable, V any](m M) M {
	if m == nil {
		return make(M)
	}
	return m
}

// storedAccount accepts the older record layout, which kept the password
// digest under "password".
type storedAccount struct {
	models.Account
	LegacyPassword string `json:"password"`
}

func decodeAccounts(data []byte) (accountSet, error) {
	var stored map[string]storedAccount
	if err := codec.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	out := make(accountSet, len(stored))
	for name, record := range stored {
		account := record.Account
		if account.PasswordHash == "" {
			account.PasswordHash = record.LegacyPassword
		}
		if account.Username == "" {
			account.Username = name
		}
		out[name] = account
	}
	return out, nil
}

func cloneAccounts(in accountSet) accountSet {
	out := make(accountSet, len(in))
	for name, account := range in {
		account.Friends = slices.Clone(account.Friends)
		account.FriendRequests = slices.Clone(account.FriendRequests)
		out[name] = account
	}
	return out
}

// cloneConversations clips every history so appends never write into an
// array shared with the live state.
func cloneConversations(in conversations) conversations {
	out := maps.Clone(in)
	if out == nil {
		out = make(conversations)
	}
	for id, history := range out {
		out[id] = slices.Clip(history)
	}
	return out
}

func cloneGroups(in groupSet) groupSet {
	out := make(groupSet, len(in))
	for name, group := range in {
		group.Members = slices.Clone(group.Members)
		out[name] = group
	}
	return out
}
