package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/gamebuddy-app/internal/domain"
)

// Kind identifies the event behind a notification
type Kind string

const (
	KindFriendRequest  Kind = "friend_request"
	KindFriendAccepted Kind = "friend_accepted"
	KindAchievement    Kind = "achievement"
)

// Notification is a push message addressed to one gamer
type Notification struct {
	GamerID   string    `json:"gamerId"`
	Token     string    `json:"token,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sink delivers a notification to its final destination
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, n Notification) error

func (f SinkFunc) Deliver(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

func newNotification(to *domain.Gamer, kind Kind, title, body string) Notification {
	n := Notification{
		GamerID:   to.ID,
		Title:     title,
		Body:      body,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if to.FCMToken != nil {
		n.Token = *to.FCMToken
	}
	return n
}

// FriendRequest tells to that from wants to be friends
func FriendRequest(to, from *domain.Gamer) Notification {
	return newNotification(to, KindFriendRequest,
		"New friend request",
		fmt.Sprintf("%s wants to be your friend", from.Username),
	)
}

// FriendAccepted tells to that by accepted their request
func FriendAccepted(to, by *domain.Gamer) Notification {
	return newNotification(to, KindFriendAccepted,
		"Friend request accepted",
		fmt.Sprintf("%s accepted your friend request", by.Username),
	)
}

// AchievementUnlocked congratulates g on a new achievement
func AchievementUnlocked(g *domain.Gamer, a *domain.Achievement) Notification {
	return newNotification(g, KindAchievement,
		"Achievement unlocked",
		fmt.Sprintf("Congratulations %s, you unlocked %s", g.Username, a.Name),
	)
}
