package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hilalbot/internal/entities"
)

type postRequest struct {
	Content          string `json:"content"`
	MediaURL         string `json:"media_url"`
	MediaPath        string `json:"media_path"`
	Type             string `json:"type"`
	ButtonText       string `json:"button_text"`
	ButtonURL        string `json:"button_url"`
	ChannelID        string `json:"channel_id"`
	ScheduledAt      string `json:"scheduled_at"`
	BroadcastToUsers bool   `json:"broadcast_to_users"`
}

func (r *postRequest) validate() string {
	if !ValidateLength(r.Content, 1, MaxPostContentLength) {
		return fmt.Sprintf("content is required (max %d chars)", MaxPostContentLength)
	}
	switch r.Type {
	case "", entities.PostTypeText, entities.PostTypePhoto, entities.PostTypeVideo:
	default:
		return "type must be text, photo or video"
	}
	if r.Type != "" && r.Type != entities.PostTypeText && r.MediaURL == "" && r.MediaPath == "" {
		return "media posts need media_url or media_path"
	}
	if r.MediaURL != "" && !ValidHTTPURL(r.MediaURL) {
		return "media_url must be an http(s) URL"
	}
	if (r.ButtonText == "") != (r.ButtonURL == "") {
		return "button_text and button_url go together"
	}
	if r.ButtonURL != "" && !ValidHTTPURL(r.ButtonURL) {
		return "button_url must be an http(s) URL"
	}
	if !ValidateLength(r.ButtonText, 0, MaxButtonTextLength) {
		return "button_text too long"
	}
	return ""
}

func (r *postRequest) apply(p *entities.Post) error {
	p.Content = SanitizeString(r.Content)
	p.MediaURL = r.MediaURL
	p.MediaPath = r.MediaPath
	if r.Type != "" {
		p.Type = r.Type
	}
	p.ButtonText = SanitizeString(r.ButtonText)
	p.ButtonURL = r.ButtonURL
	p.ChannelID = r.ChannelID
	p.BroadcastToUsers = r.BroadcastToUsers
	if r.ScheduledAt != "" {
		at, err := time.Parse(time.RFC3339, r.ScheduledAt)
		if err != nil {
			return fmt.Errorf("scheduled_at must be RFC3339")
		}
		p.ScheduledAt = &at
	}
	return nil
}

func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.posts.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPostStats summarizes posts by lifecycle state.
func (h *Handler) GetPostStats(c *gin.Context) {
	counts, err := h.posts.StatusCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count posts"})
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"draft":     counts[entities.PostStatusDraft],
		"scheduled": counts[entities.PostStatusScheduled],
		"sent":      counts[entities.PostStatusSent],
		"failed":    counts[entities.PostStatusFailed],
	})
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	post := &entities.Post{}
	if err := req.apply(post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.posts.Create(post)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetPost(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	if post.Status == entities.PostStatusSent {
		c.JSON(http.StatusConflict, gin.H{"error": "Sent posts cannot be edited"})
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if err := req.apply(post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.posts.Update(post)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}
	deleted, err := h.posts.Delete(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// SendPost delivers a post to its channel immediately. The body may name a
// channel_id to override the one stored on the post.
func (h *Handler) SendPost(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}
	if req.ChannelID != "" {
		post.ChannelID = req.ChannelID
	}
	if post.ChannelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post has no channel"})
		return
	}

	if err := h.bots.SendPostToChannel(post); err != nil {
		h.posts.MarkFailed(post.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Delivery failed"})
		return
	}
	h.posts.MarkSent(post.ID, "")
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// BroadcastPost pushes a post to every active subscriber. Runs in the
// background because a large subscriber base takes minutes at broadcast
// pace.
func (h *Handler) BroadcastPost(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	variants := []string{entities.BotTurkish, entities.BotKorean}
	if bot := c.Query("bot"); bot == entities.BotTurkish || bot == entities.BotKorean {
		variants = []string{bot}
	}

	go func() {
		var sent, failed int
		for _, variant := range variants {
			s, f := h.bots.BroadcastToSubscribers(post, variant)
			sent += s
			failed += f
		}
		if sent > 0 || failed == 0 {
			h.posts.MarkSent(post.ID, "")
		} else {
			h.posts.MarkFailed(post.ID)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "broadcasting"})
}

func (h *Handler) SchedulePost(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	var req struct {
		ScheduledAt      string `json:"scheduled_at"`
		BroadcastToUsers *bool  `json:"broadcast_to_users"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ScheduledAt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at is required"})
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at must be RFC3339"})
		return
	}
	if at.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at must be in the future"})
		return
	}

	if req.BroadcastToUsers != nil && *req.BroadcastToUsers != post.BroadcastToUsers {
		post.BroadcastToUsers = *req.BroadcastToUsers
		if _, err := h.posts.Update(post); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule post"})
			return
		}
	}

	scheduled, err := h.posts.Schedule(post.ID, at)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule post"})
		return
	}
	c.JSON(http.StatusOK, scheduled)
}

// UploadMedia stores a post attachment under the upload dir. Only the
// image/video types Telegram accepts are allowed.
func (h *Handler) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 50MB"})
		return
	}

	ext, ok := allowedUploadTypes[file.Header.Get("Content-Type")]
	if !ok {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported media type"})
		return
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	dest := filepath.Join(h.uploadDir, name)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"media_path": dest,
		"url":        "/uploads/" + name,
	})
}

func (h *Handler) loadPost(c *gin.Context) (*entities.Post, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return nil, false
	}
	post, err := h.posts.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return nil, false
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}
	return post, true
}
