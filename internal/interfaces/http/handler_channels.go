package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hilalbot/internal/entities"
)

type channelRequest struct {
	ChannelID       string `json:"channel_id"`
	ChannelUsername string `json:"channel_username"`
	Title           string `json:"title"`
	PhotoURL        string `json:"photo_url"`
	IsMandatory     *bool  `json:"is_mandatory"`
	IsActive        *bool  `json:"is_active"`
}

func (r *channelRequest) validate() string {
	if r.ChannelID == "" || r.ChannelUsername == "" {
		return "channel_id and channel_username are required"
	}
	if !ValidateLength(r.Title, 1, MaxTitleLength) {
		return "title is required (max 256 chars)"
	}
	if r.PhotoURL != "" && !ValidHTTPURL(r.PhotoURL) {
		return "photo_url must be an http(s) URL"
	}
	return ""
}

func (h *Handler) ListChannels(c *gin.Context) {
	channels, err := h.channels.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *Handler) CreateChannel(c *gin.Context) {
	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	channel := &entities.Channel{
		ChannelID:       SanitizeString(req.ChannelID),
		ChannelUsername: SanitizeString(req.ChannelUsername),
		Title:           SanitizeString(req.Title),
		PhotoURL:        req.PhotoURL,
		IsMandatory:     true,
		IsActive:        true,
	}
	if req.IsMandatory != nil {
		channel.IsMandatory = *req.IsMandatory
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}

	created, err := h.channels.Create(channel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateChannel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel id"})
		return
	}

	existing, err := h.channels.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load channel"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Partial update: only provided fields change.
	if req.ChannelID != "" {
		existing.ChannelID = SanitizeString(req.ChannelID)
	}
	if req.ChannelUsername != "" {
		existing.ChannelUsername = SanitizeString(req.ChannelUsername)
	}
	if req.Title != "" {
		existing.Title = SanitizeString(req.Title)
	}
	if req.PhotoURL != "" {
		if !ValidHTTPURL(req.PhotoURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photo_url must be an http(s) URL"})
			return
		}
		existing.PhotoURL = req.PhotoURL
	}
	if req.IsMandatory != nil {
		existing.IsMandatory = *req.IsMandatory
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	updated, err := h.channels.Update(existing)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update channel"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteChannel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel id"})
		return
	}

	deleted, err := h.channels.Delete(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete channel"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
