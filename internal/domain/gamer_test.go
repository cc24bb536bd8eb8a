package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSet(t *testing.T) {
	s := NewIDSet("b", "a", "b")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a"))

	s.Add("c")
	s.Remove("a")
	assert.Equal(t, []string{"b", "c"}, s.Slice())

	c := s.Clone()
	c.Add("d")
	assert.False(t, s.Has("d"))
}

func TestGamerCloneIsDeep(t *testing.T) {
	token := "fcm"
	g := NewGamer("1", "alice", "alice@example.com")
	g.FCMToken = &token
	g.Friends.Add("2")

	c := g.Clone()
	c.Friends.Add("3")
	c.JoinedCommunities.Add("c-1")
	*c.FCMToken = "other"

	assert.False(t, g.Friends.Has("3"))
	assert.False(t, g.JoinedCommunities.Has("c-1"))
	assert.Equal(t, "fcm", *g.FCMToken)
}

func TestNormalizeFillsNilSets(t *testing.T) {
	g := (&Gamer{ID: "1"}).Normalize()
	require.NotNil(t, g.Keywords)
	require.NotNil(t, g.JoinedCommunities)
	g.Keywords.Add("k")
	assert.True(t, g.Keywords.Has("k"))
}

func TestBusinessErrors(t *testing.T) {
	wrapped := fmt.Errorf("accepting friend: %w", ErrFriendNoRequest)

	assert.True(t, errors.Is(wrapped, ErrFriendNoRequest))
	assert.Equal(t, ErrFriendNoRequest, AsBusinessError(wrapped))
	assert.Equal(t, "116", AsBusinessError(wrapped).Code())
	assert.True(t, IsNotFoundError(wrapped))

	assert.Equal(t, ErrInternalError, AsBusinessError(errors.New("boom")))
	assert.False(t, IsNotFoundError(ErrCoinNotEnough))
}

func TestValidUUID(t *testing.T) {
	assert.True(t, ValidUUID("6f1c1d56-1b43-4e1b-9d0e-3b3f1c0a9e11"))
	assert.False(t, ValidUUID("not-a-uuid"))
}
