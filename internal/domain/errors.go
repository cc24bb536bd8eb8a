package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind classifies a business error for transport mapping
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindConflict
	KindInvalid
	KindUnauthorized
	KindRateLimited
)

// BusinessError is a terminal, typed failure carrying a stable id and name.
// Values are compared by identity, so callers use errors.Is against the
// sentinels below.
type BusinessError struct {
	ID   int
	Name string
	Kind ErrorKind
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Name, e.ID)
}

// Code returns the string form of the id used in response envelopes
func (e *BusinessError) Code() string {
	return strconv.Itoa(e.ID)
}

func newBusinessError(id int, name string, kind ErrorKind) *BusinessError {
	return &BusinessError{ID: id, Name: name, Kind: kind}
}

// StatusDefault is the success status shared by every operation
const (
	StatusDefaultID   = 100
	StatusDefaultName = "DEFAULT"
)

// Domain errors
var (
	ErrUnauthorized         = newBusinessError(101, "UNAUTHORIZED", KindUnauthorized)
	ErrInvalidRequest       = newBusinessError(102, "INVALID_REQUEST", KindInvalid)
	ErrUserNotFound         = newBusinessError(103, "USER_NOT_FOUND", KindNotFound)
	ErrUserBlocked          = newBusinessError(113, "USER_BLOCKED", KindConflict)
	ErrFriendAlreadyExists  = newBusinessError(115, "FRIEND_ALREADY_EXISTS", KindConflict)
	ErrFriendNoRequest      = newBusinessError(116, "FRIEND_NO_REQUEST", KindNotFound)
	ErrFriendNotFound       = newBusinessError(117, "FRIEND_NOT_FOUND", KindNotFound)
	ErrUserAlreadyBlocked   = newBusinessError(118, "USER_ALREADY_BLOCKED", KindConflict)
	ErrUserNotBlocked       = newBusinessError(119, "USER_NOT_BLOCKED", KindConflict)
	ErrAlreadySentRequest   = newBusinessError(120, "ALREADY_SENT_REQUEST", KindConflict)
	ErrUserBlockedYou       = newBusinessError(121, "USER_BLOCKED_YOU", KindConflict)
	ErrAlreadyFriends       = newBusinessError(122, "ALREADY_FRIENDS", KindConflict)
	ErrAchievementNotFound  = newBusinessError(124, "ACHIEVEMENT_NOT_FOUND", KindNotFound)
	ErrAlreadyCollected     = newBusinessError(125, "ALREADY_COLLECTED", KindConflict)
	ErrAchievementNotEarned = newBusinessError(126, "ACHIEVEMENT_NOT_EARNED", KindConflict)
	ErrAvatarNotFound       = newBusinessError(127, "AVATAR_NOT_FOUND", KindNotFound)
	ErrAvatarAlreadyOwned   = newBusinessError(128, "AVATAR_ALREADY_OWNED", KindConflict)
	ErrCoinNotEnough        = newBusinessError(129, "COIN_NOT_ENOUGH", KindConflict)
	ErrSameIDs              = newBusinessError(130, "SAME_IDS", KindInvalid)
	ErrRateLimited          = newBusinessError(429, "RATE_LIMITED", KindRateLimited)
	ErrInternalError        = newBusinessError(500, "INTERNAL_ERROR", KindInternal)
)

// AsBusinessError extracts the business error from err, falling back to
// ErrInternalError for anything else.
func AsBusinessError(err error) *BusinessError {
	var be *BusinessError
	if errors.As(err, &be) {
		return be
	}
	return ErrInternalError
}

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	var be *BusinessError
	return errors.As(err, &be) && be.Kind == KindNotFound
}
