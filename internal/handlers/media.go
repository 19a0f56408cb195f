package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

// MediaHandler serves downloaded attachments from the local media directory.
type MediaHandler struct {
	dir string
}

// NewMediaHandler creates a media handler rooted at dir.
func NewMediaHandler(dir string) *MediaHandler {
	return &MediaHandler{dir: dir}
}

// Register mounts GET /media/:name on the Echo instance.
func (h *MediaHandler) Register(e *echo.Echo) {
	e.GET("/media/:name", h.Serve)
}

// Serve streams one downloaded file. Names containing path separators or
// parent references are rejected.
func (h *MediaHandler) Serve(c echo.Context) error {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file name")
	}

	path := filepath.Join(h.dir, name)
	if _, err := os.Stat(path); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return c.File(path)
}
