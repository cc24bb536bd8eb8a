package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/go-chi/chi/v5"
)

// GetKeywords returns the keyword catalog
func (h *Handler) GetKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.service.Keywords(r.Context())
	h.respond(w, r, keywords, err)
}

// GetGames returns the game catalog
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.Games(r.Context())
	h.respond(w, r, games, err)
}

// GetPopularGames returns popular games, best rated first
func (h *Handler) GetPopularGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.PopularGames(r.Context())
	h.respond(w, r, games, err)
}

// GetAvatars returns the avatars the caller owns or can use
func (h *Handler) GetAvatars(w http.ResponseWriter, r *http.Request) {
	avatars, err := h.service.ListAvatars(r.Context(), callerID(r))
	h.respond(w, r, avatars, err)
}

// GetAchievements returns every achievement with the caller's progress
func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.service.ListAchievements(r.Context(), callerID(r))
	h.respond(w, r, achievements, err)
}

// GetMarketplace returns the items for sale
func (h *Handler) GetMarketplace(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Marketplace(r.Context())
	h.respond(w, r, items, err)
}

// GetUserInfo returns the public profile of a gamer
func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.UserInfo(r.Context(), chi.URLParam(r, "userID"))
	h.respond(w, r, info, err)
}

// CollectAchievement moves an earned achievement's value into the caller's coins
func (h *Handler) CollectAchievement(w http.ResponseWriter, r *http.Request) {
	err := h.service.CollectAchievement(r.Context(), callerID(r), chi.URLParam(r, "achievementID"))
	h.respond(w, r, nil, err)
}

// BuyItem buys a special avatar
func (h *Handler) BuyItem(w http.ResponseWriter, r *http.Request) {
	err := h.service.BuyItem(r.Context(), callerID(r), chi.URLParam(r, "itemID"))
	h.respond(w, r, nil, err)
}

// GetFriends lists the caller's friends
func (h *Handler) GetFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.service.ListFriends(r.Context(), callerID(r))
	h.respond(w, r, friends, err)
}

// GetWaitingFriends lists gamers waiting for the caller's answer
func (h *Handler) GetWaitingFriends(w http.ResponseWriter, r *http.Request) {
	waiting, err := h.service.ListWaitingFriends(r.Context(), callerID(r))
	h.respond(w, r, waiting, err)
}

// GetBlockedFriends lists gamers the caller blocked
func (h *Handler) GetBlockedFriends(w http.ResponseWriter, r *http.Request) {
	blocked, err := h.service.ListBlockedFriends(r.Context(), callerID(r))
	h.respond(w, r, blocked, err)
}

// SendFriendRequest handles POST /send/friend
func (h *Handler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	h.friendAction(w, r, h.service.SendFriendRequest)
}

// AcceptFriendRequest handles POST /accept/friend
func (h *Handler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	h.friendAction(w, r, h.service.AcceptFriendRequest)
}

// RejectFriendRequest handles POST /reject/friend
func (h *Handler) RejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	h.friendAction(w, r, h.service.RejectFriendRequest)
}

// RemoveFriend handles POST /remove/friend
func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	h.friendAction(w, r, h.service.RemoveFriend)
}

// BlockFriend handles POST /block/friend
func (h *Handler) BlockFriend(w http.ResponseWriter, r *http.Request) {
	h.friendAction(w, r, h.service.BlockUser)
}

// UnblockFriend handles POST /unblock/friend
func (h *Handler) UnblockFriend(w http.ResponseWriter, r *http.Request) {
	h.friendAction(w, r, h.service.UnblockUser)
}

// SaveMessage stores a direct message from the caller
func (h *Handler) SaveMessage(w http.ResponseWriter, r *http.Request) {
	var req domain.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	msg, err := h.service.SaveMessage(r.Context(), callerID(r), req)
	h.respond(w, r, msg, err)
}

// GetConversation returns the messages between the caller and a peer
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.Conversation(r.Context(), callerID(r), chi.URLParam(r, "userID"))
	h.respond(w, r, messages, err)
}

// GetInbox returns one row per conversation, newest first
func (h *Handler) GetInbox(w http.ResponseWriter, r *http.Request) {
	inbox, err := h.service.Inbox(r.Context(), callerID(r))
	h.respond(w, r, inbox, err)
}

type friendOperation func(ctx context.Context, selfID, otherID string) error

func (h *Handler) friendAction(w http.ResponseWriter, r *http.Request, op friendOperation) {
	var req domain.FriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		h.writeError(w, r, domain.ErrInvalidRequest)
		return
	}
	h.respond(w, r, nil, op(r.Context(), callerID(r), req.UserID))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, data interface{}, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSuccess(w, data)
}
