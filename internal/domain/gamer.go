package domain

import (
	"sort"
	"time"
)

// IDSet is an unordered set of entity ids
type IDSet map[string]struct{}

// NewIDSet creates a set holding ids
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

func (s IDSet) Remove(id string) {
	delete(s, id)
}

func (s IDSet) Len() int {
	return len(s)
}

// Slice returns the ids in ascending order
func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Gamer is the aggregate root for one registered user
type Gamer struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Age          int       `json:"age"`
	Country      string    `json:"country"`
	Gender       string    `json:"gender"`
	Coin         int       `json:"coin"`
	AvatarID     string    `json:"avatarId,omitempty"`
	PasswordHash string    `json:"-"`
	FCMToken     *string   `json:"-"`
	LastModified time.Time `json:"lastModifiedDate"`

	// B in Friends iff this gamer is in B.Friends
	Friends IDSet `json:"-"`
	// B in WaitingFriends means B asked to befriend this gamer
	WaitingFriends IDSet `json:"-"`
	// B in BlockedFriends means this gamer blocked B
	BlockedFriends IDSet `json:"-"`

	BoughtAvatars         IDSet `json:"-"`
	EarnedAchievements    IDSet `json:"-"`
	CollectedAchievements IDSet `json:"-"`
	LikedGames            IDSet `json:"-"`
	Keywords              IDSet `json:"-"`
	JoinedCommunities     IDSet `json:"-"`
}

// NewGamer creates a gamer with every set initialised
func NewGamer(id, username, email string) *Gamer {
	g := &Gamer{
		ID:           id,
		Username:     username,
		Email:        email,
		LastModified: time.Now().UTC(),
	}
	g.ensureSets()
	return g
}

func (g *Gamer) ensureSets() {
	for _, s := range []*IDSet{
		&g.Friends, &g.WaitingFriends, &g.BlockedFriends,
		&g.BoughtAvatars, &g.EarnedAchievements, &g.CollectedAchievements,
		&g.LikedGames, &g.Keywords, &g.JoinedCommunities,
	} {
		if *s == nil {
			*s = NewIDSet()
		}
	}
}

// Normalize initialises any nil set so stores can hand out partially
// populated aggregates.
func (g *Gamer) Normalize() *Gamer {
	g.ensureSets()
	return g
}

// Peers returns every gamer id this gamer has a relation with
func (g *Gamer) Peers() IDSet {
	out := NewIDSet()
	for _, s := range []IDSet{g.Friends, g.WaitingFriends, g.BlockedFriends} {
		for id := range s {
			out.Add(id)
		}
	}
	return out
}

// RelationTo returns this gamer's view of peer
func (g *Gamer) RelationTo(peer string) (friend, waiting, blocked bool) {
	return g.Friends.Has(peer), g.WaitingFriends.Has(peer), g.BlockedFriends.Has(peer)
}

// Clone returns a deep copy of the aggregate
func (g *Gamer) Clone() *Gamer {
	c := *g
	if g.FCMToken != nil {
		token := *g.FCMToken
		c.FCMToken = &token
	}
	c.Friends = g.Friends.Clone()
	c.WaitingFriends = g.WaitingFriends.Clone()
	c.BlockedFriends = g.BlockedFriends.Clone()
	c.BoughtAvatars = g.BoughtAvatars.Clone()
	c.EarnedAchievements = g.EarnedAchievements.Clone()
	c.CollectedAchievements = g.CollectedAchievements.Clone()
	c.LikedGames = g.LikedGames.Clone()
	c.Keywords = g.Keywords.Clone()
	c.JoinedCommunities = g.JoinedCommunities.Clone()
	return &c
}

// Touch stamps the aggregate as modified
func (g *Gamer) Touch(now time.Time) {
	g.LastModified = now.UTC()
}

// GamerSummary is the public listing row for a gamer
type GamerSummary struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Age          int       `json:"age"`
	Country      string    `json:"country"`
	Avatar       string    `json:"avatar"`
	LastModified time.Time `json:"lastModifiedDate"`
}

// UserInfo is the public profile view for a gamer
type UserInfo struct {
	ID                string          `json:"id"`
	Username          string          `json:"username"`
	Email             string          `json:"email"`
	Age               int             `json:"age"`
	Country           string          `json:"country"`
	Gender            string          `json:"gender"`
	Coin              int             `json:"coin"`
	Avatar            string          `json:"avatar"`
	Games             []Game          `json:"games"`
	Keywords          []Keyword       `json:"keywords"`
	Achievements      []Achievement   `json:"achievements"`
	JoinedCommunities []CommunityView `json:"joinedCommunities"`
	Friends           []GamerSummary  `json:"friends"`
}

// FriendRequest is the body of every friend operation
type FriendRequest struct {
	UserID string `json:"userId"`
}
