package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// TelegramLogin exchanges a one-time code from the bot's /admin command for
// a JWT. Codes are single-use; a second attempt gets 401.
func (h *Handler) TelegramLogin(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := h.auth.RedeemLoginCode(req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Profile returns the identity baked into the caller's token.
func (h *Handler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       c.GetString("sub"),
		"username": c.GetString("username"),
		"role":     c.GetString("role"),
	})
}
