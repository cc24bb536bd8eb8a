package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPair(t *testing.T) {
	low, high := Pair("b", "a")
	assert.Equal(t, "a", low)
	assert.Equal(t, "b", high)

	low, high = Pair("a", "b")
	assert.Equal(t, "a", low)
	assert.Equal(t, "b", high)
}

func TestRelationViewIsDirectional(t *testing.T) {
	// b asked a; a blocked nobody, b blocked a
	r := RelationHighRequested | RelationHighBlocked

	friend, waiting, blocked := r.View("a", "b")
	assert.False(t, friend)
	assert.True(t, waiting, "a sees b waiting")
	assert.False(t, blocked)

	friend, waiting, blocked = r.View("b", "a")
	assert.False(t, friend)
	assert.False(t, waiting)
	assert.True(t, blocked, "b sees a blocked")
}

func TestRelationMergeKeepsPeerBits(t *testing.T) {
	tests := []struct {
		name    string
		stored  Relation
		self    string
		peer    string
		friend  bool
		waiting bool
		blocked bool
		want    Relation
	}{
		{
			name:   "low clears friendship",
			stored: RelationFriends | RelationHighBlocked,
			self:   "a", peer: "b",
			want: RelationHighBlocked,
		},
		{
			name:   "high records incoming request",
			stored: RelationLowBlocked,
			self:   "b", peer: "a",
			waiting: true,
			want:    RelationLowBlocked | RelationLowRequested,
		},
		{
			name:   "high blocks and keeps request it sent",
			stored: RelationHighRequested,
			self:   "b", peer: "a",
			blocked: true,
			want:    RelationHighRequested | RelationHighBlocked,
		},
		{
			name:   "low sets friendship",
			stored: 0,
			self:   "a", peer: "b",
			friend: true,
			want:   RelationFriends,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.stored.Merge(tt.self, tt.peer, tt.friend, tt.waiting, tt.blocked)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeGamerRoundTripsView(t *testing.T) {
	g := NewGamer("m", "mid", "m@example.com")
	g.Friends.Add("a")
	g.WaitingFriends.Add("z")
	g.BlockedFriends.Add("b")

	stored := map[string]Relation{
		// stale friendship that g no longer holds
		"c": RelationFriends,
	}
	merged := MergeGamer(g, stored)

	assert.Equal(t, Relation(0), merged["c"])

	loaded := NewGamer("m", "mid", "m@example.com")
	ApplyRelations(loaded, merged)
	assert.Equal(t, []string{"a"}, loaded.Friends.Slice())
	assert.Equal(t, []string{"z"}, loaded.WaitingFriends.Slice())
	assert.Equal(t, []string{"b"}, loaded.BlockedFriends.Slice())
}

func TestFriendshipIsSharedBetweenViews(t *testing.T) {
	r := Relation(0).Merge("a", "b", true, false, false)

	friendA, _, _ := r.View("a", "b")
	friendB, _, _ := r.View("b", "a")
	assert.True(t, friendA)
	assert.True(t, friendB)
}
