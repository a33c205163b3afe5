// Package api wires the HTTP surface: handlers, middleware, routes, and the
// server lifecycle.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/assistant/internal/cache"
	"github.com/jonesrussell/assistant/internal/chat"
	"github.com/jonesrussell/assistant/internal/config"
	"github.com/jonesrussell/assistant/internal/domain"
	"github.com/jonesrussell/assistant/internal/guest"
	"github.com/jonesrussell/assistant/internal/logger"
	"github.com/jonesrussell/assistant/internal/search"
	"github.com/jonesrussell/assistant/internal/telemetry"
	"github.com/jonesrussell/assistant/internal/video"
)

const (
	// sessionHeader marks a caller as authenticated when present. Session
	// handling itself lives in an external collaborator; this service only
	// checks presence.
	sessionHeader = "X-Session-User"

	// sharePathMarker identifies read-only shared conversation pages.
	sharePathMarker = "/share/"

	// maxChatBodySize bounds the chat payload forwarded upstream.
	maxChatBodySize = 1 << 20

	// healthPingTimeout bounds the cache reachability probe.
	healthPingTimeout = 2 * time.Second
)

// Handler holds the HTTP request handlers and their collaborators.
type Handler struct {
	searchService *search.Service
	videoService  *video.Service
	limiter       *guest.Limiter
	relay         *chat.Relay
	store         cache.Store
	config        *config.Config
	logger        logger.Logger
	metrics       *telemetry.Metrics
}

// NewHandler creates a new handler instance.
func NewHandler(
	searchService *search.Service,
	videoService *video.Service,
	limiter *guest.Limiter,
	relay *chat.Relay,
	store cache.Store,
	cfg *config.Config,
	log logger.Logger,
	metrics *telemetry.Metrics,
) *Handler {
	return &Handler{
		searchService: searchService,
		videoService:  videoService,
		limiter:       limiter,
		relay:         relay,
		store:         store,
		config:        cfg,
		logger:        log,
		metrics:       metrics,
	}
}

// AdvancedSearch handles advanced search requests. The provider adapter
// degrades to an empty result set internally, so the error envelope only
// covers failures outside it.
func (h *Handler) AdvancedSearch(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid search request body", logger.Error(err))
		c.JSON(http.StatusBadRequest, searchErrorEnvelope("Invalid request body", err.Error(), ""))
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Search failed",
			logger.Error(err),
			logger.String("query", req.Query),
		)

		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "validation") {
			statusCode = http.StatusBadRequest
		}
		c.JSON(statusCode, searchErrorEnvelope("Failed to perform advanced search", err.Error(), req.Query))
		return
	}

	c.JSON(http.StatusOK, result)
}

// VideoSearch handles video search requests. Enrichment failures degrade to
// partial results; only a failed initial provider search reaches the envelope.
func (h *Handler) VideoSearch(c *gin.Context) {
	var req domain.VideoSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid video search request body", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	results, err := h.videoService.SearchVideos(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Video search failed",
			logger.Error(err),
			logger.String("query", req.Query),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to perform video search",
			"error":   err.Error(),
			"results": []domain.VideoResult{},
		})
		return
	}

	c.JSON(http.StatusOK, domain.VideoSearchResults{Results: results})
}

// GuestStatus reports the caller's rate-limit standing. Authenticated callers
// are never limited.
func (h *Handler) GuestStatus(c *gin.Context) {
	if isAuthenticated(c.Request) {
		// No allowance numbers here: zeroes would read as an exhausted
		// quota when no quota applies at all.
		c.JSON(http.StatusOK, gin.H{
			"isGuestMode":    false,
			"canSendMessage": true,
		})
		return
	}

	clientID := guest.ClientIdentifier(c.Request)
	status := h.limiter.Status(c.Request.Context(), clientID)

	c.JSON(http.StatusOK, domain.GuestStatusResponse{
		IsGuestMode:       true,
		GuestMessageCount: status.Count,
		RemainingMessages: status.Remaining,
		CanSendMessage:    status.CanSend,
		MaxMessages:       status.MaxMessages,
		WindowHours:       status.WindowHours,
	})
}

// Chat gates a chat request and relays it upstream. Gate order: shared pages
// are read-only, then the guest limit, then provider availability. The guest
// counter is incremented only after every gate passes.
func (h *Handler) Chat(c *gin.Context) {
	if isSharePage(c.Request) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chat is not available on shared conversations"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxChatBodySize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	var req domain.ChatRequest
	if unmarshalErr := bindChatRequest(body, &req); unmarshalErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + unmarshalErr.Error()})
		return
	}

	authenticated := isAuthenticated(c.Request)
	clientID := guest.ClientIdentifier(c.Request)

	if !authenticated && !h.limiter.CanSend(c.Request.Context(), clientID) {
		h.metrics.RecordGuestRejection()
		status := h.limiter.Status(c.Request.Context(), clientID)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             "Guest message limit reached",
			"guestMessageCount": status.Count,
			"maxMessages":       status.MaxMessages,
			"windowHours":       status.WindowHours,
		})
		return
	}

	provider := req.Provider
	if provider == "" {
		provider = h.config.Chat.DefaultProvider
	}
	if !h.providerEnabled(provider) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider is not available: " + provider})
		return
	}

	if !authenticated {
		h.limiter.Increment(c.Request.Context(), clientID)
	}
	h.metrics.RecordChatMessage(requesterLabel(authenticated))

	if streamErr := h.relay.Stream(c.Request, c.Writer, body); streamErr != nil {
		h.logger.Error("Chat relay failed",
			logger.Error(streamErr),
			logger.String("provider", provider),
		)
		// Headers may already be written once streaming began; the JSON
		// error only reaches the client when the upstream failed up front.
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat request"})
		}
	}
}

// HealthCheck reports service liveness. Cache trouble is reported but the
// service stays healthy: search degrades without its cache.
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	cacheStatus := "ok"
	status := "healthy"
	if err := h.store.Ping(ctx); err != nil {
		cacheStatus = "unreachable"
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"service": h.config.Service.Name,
		"version": h.config.Service.Version,
		"cache":   cacheStatus,
	})
}

// ReadinessCheck reports readiness to serve traffic.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	h.HealthCheck(c)
}

func (h *Handler) providerEnabled(provider string) bool {
	for _, enabled := range h.config.Chat.EnabledProviders {
		if enabled == provider {
			return true
		}
	}
	return false
}

func isAuthenticated(r *http.Request) bool {
	return r.Header.Get(sessionHeader) != ""
}

func isSharePage(r *http.Request) bool {
	return strings.Contains(r.Referer(), sharePathMarker)
}

func requesterLabel(authenticated bool) string {
	if authenticated {
		return "user"
	}
	return "guest"
}

// bindChatRequest parses the fields the gate needs without consuming the raw
// body, which is forwarded upstream verbatim.
func bindChatRequest(body []byte, req *domain.ChatRequest) error {
	return json.Unmarshal(body, req)
}

func searchErrorEnvelope(message, errText, query string) domain.SearchErrorResponse {
	return domain.SearchErrorResponse{
		Message:         message,
		Error:           errText,
		Query:           query,
		Results:         []domain.SearchResultItem{},
		Images:          []string{},
		NumberOfResults: 0,
	}
}
