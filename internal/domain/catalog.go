package domain

import (
	"time"

	"github.com/google/uuid"
)

// Achievement names used as unlock triggers
const (
	AchievementRich     = "Rich in the hood!!!"
	AchievementFriendly = "Friendly Person!!!"
)

// RichThreshold is the number of bought special avatars that unlocks
// AchievementRich
const RichThreshold = 3

// Achievement is an immutable catalog row, equal by id
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"achievementName"`
	Value       int    `json:"value"`
	Description string `json:"description"`
}

// AchievementView is an achievement with the caller's progress
type AchievementView struct {
	Achievement
	Earned    bool `json:"isEarned"`
	Collected bool `json:"isCollected"`
}

// Avatar is a cosmetic; special avatars are priced and must be bought
type Avatar struct {
	ID      string `json:"id"`
	Image   string `json:"image"`
	Special bool   `json:"isSpecial"`
	Price   int    `json:"price"`
}

// MarketplaceItem is a special avatar as listed in the marketplace
type MarketplaceItem struct {
	ID    string `json:"id"`
	Image string `json:"image"`
	Price string `json:"price"`
}

// Game is a catalog game
type Game struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        string  `json:"gameIcon"`
	Category    string  `json:"category"`
	AvgVote     float64 `json:"avgVote"`
	Description string  `json:"description"`
	Popular     bool    `json:"isPopular"`
}

// Keyword is a catalog interest tag
type Keyword struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Community is a group of gamers owned by its creator
type Community struct {
	ID          string    `json:"communityId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Avatar      string    `json:"communityAvatar"`
	Wallpaper   string    `json:"wallpaper"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdDate"`
}

// CommunityView is a joined community as shown on a profile
type CommunityView struct {
	ID      string `json:"communityId"`
	Name    string `json:"name"`
	Avatar  string `json:"communityAvatar"`
	IsOwner bool   `json:"isOwner"`
}

// ValidUUID reports whether id parses as a UUID; catalog ids are UUIDs and a
// malformed id can never resolve.
func ValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
