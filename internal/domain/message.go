package domain

import "time"

// MessageTimeLayout is fixed width so lexicographic order is chronological
const MessageTimeLayout = "2006/01/02 15:04:05"

// Message is an immutable direct message
type Message struct {
	ID          string `json:"id" bson:"_id"`
	SenderID    string `json:"sender" bson:"sender"`
	ReceiverID  string `json:"receiver" bson:"receiver"`
	MessageBody string `json:"messageBody" bson:"messageBody"`
	Date        string `json:"date" bson:"date"`
	Read        bool   `json:"read" bson:"read"`
}

// FormatMessageTime renders t in MessageTimeLayout
func FormatMessageTime(t time.Time) string {
	return t.Format(MessageTimeLayout)
}

// MessageRequest is the body of a save message call
type MessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
	Read       bool   `json:"read"`
}

// InboxEntry is one conversation row in a gamer's inbox
type InboxEntry struct {
	UserID          string `json:"userId"`
	Username        string `json:"username"`
	Avatar          string `json:"avatar"`
	LastMessage     string `json:"lastMessage"`
	LastMessageTime string `json:"lastMessageTime"`
}
