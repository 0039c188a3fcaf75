package social

import "errors"

var (
	// ErrDuplicateUser indicates the username is already registered.
	ErrDuplicateUser = errors.New("username already exists")
	// ErrDuplicateGroup indicates a group with the same name exists.
	ErrDuplicateGroup = errors.New("group already exists")
	// ErrUnknownUser indicates no account is registered under the username.
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnknownGroup indicates no group exists under the name.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrNotAMember indicates the user does not belong to the group.
	ErrNotAMember = errors.New("not a member of this group")
	// ErrNoSuchRequest indicates there is no pending friend request from the requester.
	ErrNoSuchRequest = errors.New("no such friend request")
	// ErrSelfRequest indicates a user tried to befriend themselves.
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")
	// ErrEmptyContent indicates a post or message was blank after trimming.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrPasswordMismatch indicates a password confirmation or current password did not match.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidName indicates an empty or malformed username, group name or conversation id.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidPassword indicates a password bcrypt cannot hash (empty or longer than 72 bytes).
	ErrInvalidPassword = errors.New("invalid password")
	// ErrNoPosts indicates the feed is empty.
	ErrNoPosts = errors.New("no posts yet")
)

// errNoChange lets a mutation report success without rewriting the collection.
var errNoChange = errors.New("no change")
