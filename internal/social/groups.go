package social

import (
	"context"
	"slices"

	"github.com/socialcosmos/backend/internal/logging"
	"github.com/socialcosmos/backend/internal/models"
)

// CreateGroup registers a group whose only member is its creator.
func (s *Store) CreateGroup(ctx context.Context, name, creator string) (models.Group, error) {
	if !validName(name) || !validName(creator) {
		return models.Group{}, ErrInvalidName
	}

	group := models.Group{Creator: creator, Members: []string{creator}}
	err := s.groups.mutate(ctx, func(groups groupSet) (groupSet, error) {
		if _, exists := groups[name]; exists {
			return nil, ErrDuplicateGroup
		}
		groups[name] = group
		return groups, nil
	})
	if err != nil {
		return models.Group{}, err
	}

	logging.FromContext(ctx).Info("group created", "group", name, "creator", creator)
	return models.Group{Creator: creator, Members: []string{creator}}, nil
}

// JoinGroup adds username to the group. Joining twice is a successful no-op.
func (s *Store) JoinGroup(ctx context.Context, name, username string) error {
	if !validName(username) {
		return ErrInvalidName
	}
	return s.groups.mutate(ctx, func(groups groupSet) (groupSet, error) {
		group, ok := groups[name]
		if !ok {
			return nil, ErrUnknownGroup
		}
		if group.HasMember(username) {
			return nil, errNoChange
		}
		group.Members = append(group.Members, username)
		groups[name] = group
		return groups, nil
	})
}

// LeaveGroup removes username from the group.
func (s *Store) LeaveGroup(ctx context.Context, name, username string) error {
	return s.groups.mutate(ctx, func(groups groupSet) (groupSet, error) {
		group, ok := groups[name]
		if !ok {
			return nil, ErrUnknownGroup
		}
		idx := slices.Index(group.Members, username)
		if idx < 0 {
			return nil, ErrNotAMember
		}
		group.Members = slices.Delete(group.Members, idx, idx+1)
		groups[name] = group
		return groups, nil
	})
}

// Group returns a copy of the named group.
func (s *Store) Group(_ context.Context, name string) (models.Group, error) {
	var (
		group models.Group
		found bool
	)
	s.groups.view(func(groups groupSet) {
		group, found = groups[name]
		group.Members = slices.Clone(group.Members)
	})
	if !found {
		return models.Group{}, ErrUnknownGroup
	}
	if group.Members == nil {
		group.Members = []string{}
	}
	return group, nil
}

// ListGroups returns every group name in lexical order.
func (s *Store) ListGroups(_ context.Context) []string {
	var names []string
	s.groups.view(func(groups groupSet) {
		names = make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
	})
	slices.Sort(names)
	return names
}
