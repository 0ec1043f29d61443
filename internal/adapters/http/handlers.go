package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	deps Deps
}

type TrackVisitRequest struct {
	SessionID string `json:"sessionId"`
}

type TrackVisitResponse struct {
	Success       bool  `json:"success"`
	TotalVisitors int64 `json:"totalVisitors"`
	ActiveUsers   int   `json:"activeUsers"`
}

type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Uptime        float64   `json:"uptime"`
	ActiveRooms   int       `json:"activeRooms"`
	TotalVisitors int64     `json:"totalVisitors"`
	ActiveUsers   int       `json:"activeUsers"`
	Message       string    `json:"message"`
}

func (h *handlers) health(c *gin.Context) {
	resp := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.deps.StartedAt).Seconds(),
		ActiveRooms: h.deps.Rooms.RoomCount(),
		ActiveUsers: h.deps.Conns.Active(),
		Message:     "Rendezvous signaling server is running",
	}
	total, err := h.deps.Visits.Total(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("visit total unavailable")
		resp.Status = "degraded"
	}
	resp.TotalVisitors = total
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) trackVisit(c *gin.Context) {
	var req TrackVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = c.GetString(clientTokenKey)
	}

	total, err := h.deps.Visits.Track(c.Request.Context(), req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("track visit")
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "visit store unavailable"})
		return
	}
	c.JSON(http.StatusOK, TrackVisitResponse{
		Success:       true,
		TotalVisitors: total,
		ActiveUsers:   h.deps.Conns.Active(),
	})
}

func (h *handlers) ice(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.deps.ICEServers})
}

func (h *handlers) room(c *gin.Context) {
	info, ok := h.deps.Rooms.RoomInfo(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"roomId": c.Param("id"), "exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roomId":    info.ID,
		"exists":    true,
		"members":   info.Members,
		"capacity":  info.Capacity,
		"createdAt": info.CreatedAt,
	})
}
