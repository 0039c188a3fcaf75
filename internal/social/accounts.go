package social

import (
	"context"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/socialcosmos/backend/internal/logging"
	"github.com/socialcosmos/backend/internal/models"
)

const maxNameLength = 64

// validName accepts non-empty names without surrounding whitespace or control
// characters. Usernames, group names and conversation ids share the rule.
func validName(name string) bool {
	if name == "" || name != strings.TrimSpace(name) || utf8.RuneCountInString(name) > maxNameLength {
		return false
	}
	return !strings.ContainsFunc(name, unicode.IsControl)
}

// Register creates an account with an empty bio, friend set and request list.
func (s *Store) Register(ctx context.Context, username, password string) error {
	if !validName(username) {
		return ErrInvalidName
	}
	if s.HasUser(username) {
		return ErrDuplicateUser
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	err = s.accounts.mutate(ctx, func(accounts accountSet) (accountSet, error) {
		if _, exists := accounts[username]; exists {
			return nil, ErrDuplicateUser
		}
		accounts[username] = models.Account{
			Username:       username,
			PasswordHash:   hash,
			Friends:        []string{},
			FriendRequests: []string{},
		}
		return accounts, nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("account registered", "account", username)
	return nil
}

// Authenticate reports whether password matches the stored hash for username.
// Unknown users simply fail. Legacy SHA-256 digests are upgraded to bcrypt on
// a successful match.
func (s *Store) Authenticate(ctx context.Context, username, password string) bool {
	hash, ok := s.passwordHash(username)
	if !ok {
		return false
	}

	matched, legacy := verifyPassword(hash, password)
	if !matched {
		return false
	}

	if legacy {
		if err := s.replacePasswordHash(ctx, username, hash, password); err != nil {
			logging.FromContext(ctx).Warn("upgrade legacy password hash", "account", username, "error", err)
		}
	}
	return true
}

// ChangePassword replaces the password after verifying the current one.
func (s *Store) ChangePassword(ctx context.Context, username, current, next string) error {
	hash, ok := s.passwordHash(username)
	if !ok {
		return ErrUnknownUser
	}
	if matched, _ := verifyPassword(hash, current); !matched {
		return ErrPasswordMismatch
	}
	return s.replacePasswordHash(ctx, username, hash, next)
}

// replacePasswordHash stores a fresh hash for password as long as the account
// still carries expected, so a concurrent change is not overwritten.
func (s *Store) replacePasswordHash(ctx context.Context, username, expected, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	return s.accounts.mutate(ctx, func(accounts accountSet) (accountSet, error) {
		account, ok := accounts[username]
		if !ok {
			return nil, ErrUnknownUser
		}
		if account.PasswordHash != expected {
			return nil, ErrPasswordMismatch
		}
		account.PasswordHash = hash
		accounts[username] = account
		return accounts, nil
	})
}

// UpdateBio overwrites the bio of username.
func (s *Store) UpdateBio(ctx context.Context, username, bio string) error {
	return s.accounts.mutate(ctx, func(accounts accountSet) (accountSet, error) {
		account, ok := accounts[username]
		if !ok {
			return nil, ErrUnknownUser
		}
		if account.Bio == bio {
			return nil, errNoChange
		}
		account.Bio = bio
		accounts[username] = account
		return accounts, nil
	})
}

// Profile returns the public view of an account.
func (s *Store) Profile(_ context.Context, username string) (models.Profile, error) {
	var (
		profile models.Profile
		found   bool
	)
	s.accounts.view(func(accounts accountSet) {
		account, ok := accounts[username]
		if !ok {
			return
		}
		found = true
		profile = models.Profile{
			Username:       account.Username,
			Bio:            account.Bio,
			Friends:        nonNil(slices.Clone(account.Friends)),
			FriendRequests: nonNil(slices.Clone(account.FriendRequests)),
		}
	})
	if !found {
		return models.Profile{}, ErrUnknownUser
	}
	return profile, nil
}

// ListUsers returns every registered username in lexical order.
func (s *Store) ListUsers(_ context.Context) []string {
	var names []string
	s.accounts.view(func(accounts accountSet) {
		names = make([]string, 0, len(accounts))
		for name := range accounts {
			names = append(names, name)
		}
	})
	slices.Sort(names)
	return names
}

// HasUser reports whether username is registered.
func (s *Store) HasUser(username string) bool {
	_, ok := s.passwordHash(username)
	return ok
}

func (s *Store) passwordHash(username string) (hash string, ok bool) {
	s.accounts.view(func(accounts accountSet) {
		var account models.Account
		account, ok = accounts[username]
		hash = account.PasswordHash
	})
	return hash, ok
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
