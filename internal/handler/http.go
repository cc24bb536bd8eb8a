package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/gamebuddy-app/internal/metrics"
	"github.com/gamebuddy-app/internal/service"
	"github.com/gamebuddy-app/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// CallerResolver maps a bearer token to the calling gamer's id
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (string, error)
}

// Handler provides HTTP handlers for the application API
type Handler struct {
	service  *service.ApplicationService
	resolver CallerResolver
	hub      *websocket.Hub
	metrics  *metrics.Metrics
	limiter  *ipLimiter
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service *service.ApplicationService, resolver CallerResolver, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
		hub:      hub,
		logger:   logger,
	}
}

// SetMetrics enables request and error metrics plus the /metrics endpoint
func (h *Handler) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// SetRateLimit limits each client IP to rps requests per second
func (h *Handler) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		h.limiter = nil
		return
	}
	h.limiter = newIPLimiter(rps, burst)
}

// Status is the outcome block of every response
type Status struct {
	Code string `json:"code"`
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Body wraps the payload of a successful response
type Body struct {
	Data interface{} `json:"data"`
}

// Envelope is the uniform response shape
type Envelope struct {
	Body   *Body  `json:"body,omitempty"`
	Status Status `json:"status"`
}

var statusDefault = Status{
	Code: "100",
	ID:   domain.StatusDefaultID,
	Name: domain.StatusDefaultName,
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.Middleware)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	// WebSocket endpoint, authenticated by header or ?token=
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/application", func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Use(h.authenticate)

		// Catalog
		r.Get("/get/keywords", h.GetKeywords)
		r.Get("/get/games", h.GetGames)
		r.Get("/get/games/popular", h.GetPopularGames)
		r.Get("/get/avatars", h.GetAvatars)
		r.Get("/get/achievements", h.GetAchievements)
		r.Get("/get/marketplace", h.GetMarketplace)
		r.Get("/get/user/{userID}", h.GetUserInfo)

		// Achievements and marketplace
		r.Post("/collect/achievement/{achievementID}", h.CollectAchievement)
		r.Post("/buy/item/{itemID}", h.BuyItem)

		// Friends
		r.Get("/get/friends", h.GetFriends)
		r.Get("/get/requests/friends", h.GetWaitingFriends)
		r.Get("/get/blocked/friends", h.GetBlockedFriends)
		r.Post("/send/friend", h.SendFriendRequest)
		r.Post("/accept/friend", h.AcceptFriendRequest)
		r.Post("/reject/friend", h.RejectFriendRequest)
		r.Post("/remove/friend", h.RemoveFriend)
		r.Post("/block/friend", h.BlockFriend)
		r.Post("/unblock/friend", h.UnblockFriend)

		// Messages
		r.Post("/save/message", h.SaveMessage)
		r.Get("/get/conversation/{userID}", h.GetConversation)
		r.Get("/get/inbox", h.GetInbox)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes data under the default status
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, Envelope{
		Body:   &Body{Data: data},
		Status: statusDefault,
	})
}

// writeError maps err to its business status. Anything that is not a
// business error is logged and reported as INTERNAL_ERROR.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	be := domain.AsBusinessError(err)
	var typed *domain.BusinessError
	if !errors.As(err, &typed) {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	h.metrics.BusinessError(be)

	h.writeJSON(w, httpStatus(be), Envelope{
		Status: Status{Code: be.Code(), ID: be.ID, Name: be.Name},
	})
}

func httpStatus(err *domain.BusinessError) int {
	switch err.Kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HandleWebSocket registers an authenticated notification connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := bearerOrQuery(r)
	gamerID, err := h.resolver.ResolveCaller(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	websocket.ServeWs(h.hub, gamerID, h.logger, w, r)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck reports whether the backing stores answer, along with the
// number of websocket clients connected to this instance
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, Envelope{
			Status: Status{
				Code: domain.ErrInternalError.Code(),
				ID:   domain.ErrInternalError.ID,
				Name: domain.ErrInternalError.Name,
			},
		})
		return
	}
	h.writeSuccess(w, map[string]interface{}{
		"status":                "ready",
		"websocket_connections": h.hub.GetTotalConnections(),
	})
}
