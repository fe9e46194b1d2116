package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/fical/fical/app/calendar"
	"github.com/fical/fical/app/cfg"
	"github.com/fical/fical/app/shortlink"
)

// Sentinel the web UI sends when the allowlist field was left empty.
const emptyAllowlistToken = "__empty_allowlist__"

func (h *Handler) PostCombined(c *gin.Context) {
	var req calendar.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.respond(c, req)
}

func (h *Handler) GetCombined(c *gin.Context) {
	payload := c.Query("payload")
	if payload == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing payload parameter"})
		return
	}

	decoded, err := decodeBase64Param(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 data for payload."})
		return
	}

	var req calendar.Request
	if err := json.Unmarshal([]byte(decoded), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload JSON."})
		return
	}

	h.respond(c, req)
}

// GetLegacyCalendar serves the original single-source route with urlsafe
// base64 path segments and comma-separated keyword lists.
func (h *Handler) GetLegacyCalendar(c *gin.Context) {
	rawURL, err := decodeBase64Param(c.Param("b64url"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 data for url."})
		return
	}

	allowlistRaw, err := decodeBase64Param(c.Param("b64allowlist"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 data for allowlist."})
		return
	}

	var blocklistRaw string
	if b64blocklist := c.Query("b64blocklist"); b64blocklist != "" {
		blocklistRaw, err = decodeBase64Param(b64blocklist)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 data for blocklist."})
			return
		}
	}

	short := false
	if rawShort := c.Query("short"); rawShort != "" {
		short, _ = strconv.ParseBool(strings.ToLower(rawShort))
	}

	req := calendar.Request{
		Calendars: []calendar.Spec{{
			URL:       rawURL,
			Allowlist: splitKeywords(allowlistRaw),
			Blocklist: splitKeywords(blocklistRaw),
		}},
		Short: short,
	}

	h.respond(c, req)
}

func (h *Handler) ResolveShortLink(c *gin.Context) {
	key := c.Param("key")

	req, err := h.shortLinks.Resolve(key)
	if err != nil {
		h.renderError(c, err)
		return
	}

	// The cache stores configuration, not fetched results; every
	// resolution re-fetches the sources.
	req.Short = false
	h.renderCalendar(c, req)
}

func (h *Handler) GetPresetFeed(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("name"), ".ics")

	preset, err := h.presets.GetPreset(name)
	if err != nil {
		slog.Error("Preset not found", "preset", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Preset not found"})
		return
	}

	h.renderCalendar(c, preset.Request())
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if linkCount, err := h.shortLinks.Count(); err == nil {
		health["short_links"] = linkCount
	}

	health["loaded_presets"] = h.presets.GetPresetCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) respond(c *gin.Context, req calendar.Request) {
	if err := h.processor.Validate(req); err != nil {
		h.renderError(c, err)
		return
	}

	if req.Short {
		key, err := h.shortLinks.GetOrCreate(req)
		if err != nil {
			h.renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"short": h.shortURL(c, key)})
		return
	}

	h.renderCalendar(c, req)
}

func (h *Handler) renderCalendar(c *gin.Context, req calendar.Request) {
	document, err := h.processor.Run(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.String(http.StatusOK, document)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	var invalidErr *calendar.InvalidConfigError
	var allFailedErr *calendar.AllSourcesFailedError

	switch {
	case errors.As(err, &invalidErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidErr.Error()})
	case errors.Is(err, shortlink.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Short link not found"})
	case errors.As(err, &allFailedErr):
		sources := make([]gin.H, 0, len(allFailedErr.Errors))
		for _, se := range allFailedErr.Errors {
			sources = append(sources, gin.H{"url": se.URL, "error": se.Err.Error()})
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "All calendar sources failed",
			"sources": sources,
		})
	default:
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *Handler) shortURL(c *gin.Context, key string) string {
	base := cfg.Get().BaseUrl
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}

	return fmt.Sprintf("%s/s/%s", strings.TrimRight(base, "/"), key)
}

// decodeBase64Param decodes a urlsafe base64 value, tolerating missing
// padding the way subscription clients tend to send it.
func decodeBase64Param(value string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(value, "="))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("decoded value is not valid UTF-8")
	}
	return string(data), nil
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}

	keywords := make([]string, 0)
	for _, keyword := range strings.Split(raw, ",") {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" || keyword == emptyAllowlistToken {
			continue
		}
		keywords = append(keywords, keyword)
	}

	return keywords
}
