// Package relay downloads remote media into a local directory so attachments
// can be mirrored and served over HTTP.
package relay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Download locates one fetched attachment on the local filesystem.
type Download struct {
	FileName string
	FilePath string
}

// Relay fetches remote files into a media directory.
type Relay struct {
	dir    string
	client *http.Client
	logger *slog.Logger
}

// New creates a Relay; the media directory is created when missing.
func New(log *slog.Logger, dir string, timeout time.Duration) (*Relay, error) {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("relay: media directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("relay: create media directory: %w", err)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Relay{
		dir: dir,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: log.With(slog.String("service", "relay")),
	}, nil
}

// Dir returns the media directory downloads are written to.
func (r *Relay) Dir() string {
	return r.dir
}

// Fetch downloads rawURL into the media directory and returns the generated
// file name and its path. The optional bearer token is attached when set.
func (r *Relay) Fetch(ctx context.Context, rawURL, bearerToken string) (Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Download{}, fmt.Errorf("relay: build request: %w", err)
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Download{}, fmt.Errorf("relay: fetch %s: %w", rawURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			r.logger.Warn("close response body failed", slog.Any("error", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Download{}, fmt.Errorf("relay: fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	ext := extensionFor(resp.Header.Get("Content-Type"), rawURL)
	fileName := uuid.NewString() + ext
	filePath := filepath.Join(r.dir, fileName)

	file, err := os.Create(filePath)
	if err != nil {
		return Download{}, fmt.Errorf("relay: create file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = os.Remove(filePath)
		return Download{}, fmt.Errorf("relay: write file: %w", err)
	}

	r.logger.Info("attachment downloaded",
		slog.String("url", rawURL),
		slog.String("file", fileName),
	)
	return Download{FileName: fileName, FilePath: filePath}, nil
}

// extensionFor infers a file extension from the declared media type, falling
// back to the URL path, then to ".bin".
func extensionFor(contentType, rawURL string) string {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	if ext := extensionFromMime(mime); ext != "" {
		return ext
	}
	if parsed, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(parsed.Path); ext != "" {
			return ext
		}
	}
	return ".bin"
}

func extensionFromMime(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/wav":
		return ".wav"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
