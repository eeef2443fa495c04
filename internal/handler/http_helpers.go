package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// requestBaseURL reconstructs the scheme and host the client used, so
// composed emails can link back to the right origin when no site URL is
// configured.
func requestBaseURL(c *gin.Context) string {
	if c == nil || c.Request == nil || c.Request.Host == "" {
		return ""
	}

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

// mediaURL absolutizes a media-relative path against the configured
// site URL, falling back to the requesting origin.
func (a *API) mediaURL(c *gin.Context, rel string) string {
	if rel == "" {
		return ""
	}

	base := a.siteBaseURL
	if base == "" {
		base = requestBaseURL(c)
	}
	return base + a.mediaURLPath + "/" + strings.TrimLeft(rel, "/")
}
