package social

import (
	"context"
	"slices"

	"github.com/socialcosmos/backend/internal/logging"
)

// SendFriendRequest queues a pending request from sender on receiver's account.
// Resending while the request is pending, or when both are already friends,
// succeeds without changes.
func (s *Store) SendFriendRequest(ctx context.Context, sender, receiver string) error {
	if sender == receiver {
		return ErrSelfRequest
	}
	err := s.accounts.mutate(ctx, func(accounts accountSet) (accountSet, error) {
		if _, ok := accounts[sender]; !ok {
			return nil, ErrUnknownUser
		}
		target, ok := accounts[receiver]
		if !ok {
			return nil, ErrUnknownUser
		}
		if slices.Contains(target.FriendRequests, sender) || slices.Contains(target.Friends, sender) {
			return nil, errNoChange
		}
		target.FriendRequests = append(target.FriendRequests, sender)
		accounts[receiver] = target
		return accounts, nil
	})
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("friend request sent", "sender", sender, "receiver", receiver)
	return nil
}

// AcceptFriendRequest consumes the pending request from requester and adds
// each user to the other's friends. Both edges are persisted in one write.
func (s *Store) AcceptFriendRequest(ctx context.Context, username, requester string) error {
	err := s.accounts.mutate(ctx, func(accounts accountSet) (accountSet, error) {
		account, ok := accounts[username]
		if !ok {
			return nil, ErrUnknownUser
		}
		idx := slices.Index(account.FriendRequests, requester)
		if idx < 0 {
			return nil, ErrNoSuchRequest
		}
		other, ok := accounts[requester]
		if !ok {
			return nil, ErrUnknownUser
		}

		account.FriendRequests = slices.Delete(account.FriendRequests, idx, idx+1)
		other.FriendRequests = removeName(other.FriendRequests, username)
		account.Friends = addName(account.Friends, requester)
		other.Friends = addName(other.Friends, username)

		accounts[username] = account
		accounts[requester] = other
		return accounts, nil
	})
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("friend request accepted", "account", username, "requester", requester)
	return nil
}

// DeclineFriendRequest drops the pending request from requester.
func (s *Store) DeclineFriendRequest(ctx context.Context, username, requester string) error {
	return s.accounts.mutate(ctx, func(accounts accountSet) (accountSet, error) {
		account, ok := accounts[username]
		if !ok {
			return nil, ErrUnknownUser
		}
		idx := slices.Index(account.FriendRequests, requester)
		if idx < 0 {
			return nil, ErrNoSuchRequest
		}
		account.FriendRequests = slices.Delete(account.FriendRequests, idx, idx+1)
		accounts[username] = account
		return accounts, nil
	})
}

// Friends returns the sorted friend set of username.
func (s *Store) Friends(ctx context.Context, username string) ([]string, error) {
	profile, err := s.Profile(ctx, username)
	if err != nil {
		return nil, err
	}
	return profile.Friends, nil
}

// addName inserts name keeping the slice sorted and free of duplicates.
func addName(names []string, name string) []string {
	if slices.Contains(names, name) {
		return names
	}
	idx, _ := slices.BinarySearch(names, name)
	return slices.Insert(names, idx, name)
}

func removeName(names []string, name string) []string {
	if idx := slices.Index(names, name); idx >= 0 {
		return slices.Delete(names, idx, idx+1)
	}
	return names
}
