// Package chatwoot is a typed HTTP client for the Chatwoot account-scoped REST API.
package chatwoot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const tokenHeader = "api_access_token"

// StatusError reports a non-2xx response from the Chatwoot API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("chatwoot: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("chatwoot: unexpected status %d: %s", e.Code, e.Body)
}

// Config holds the connection parameters for one Chatwoot account.
type Config struct {
	Account  string
	Token    string
	Endpoint string
	Timeout  time.Duration
}

// Client issues authenticated requests against a single Chatwoot account.
type Client struct {
	account  string
	token    string
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// New builds a Client; account, token, and endpoint are all required.
func New(log *slog.Logger, cfg Config) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(cfg.Account) == "" {
		return nil, errors.New("chatwoot: account is required")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("chatwoot: token is required")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("chatwoot: endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		account:  strings.TrimSpace(cfg.Account),
		token:    strings.TrimSpace(cfg.Token),
		endpoint: strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		logger: log.With(slog.String("service", "chatwoot")),
	}, nil
}

func (c *Client) url(path string) string {
	return c.endpoint + "/api/v1/accounts/" + c.account + path
}

// doJSON issues one JSON request and decodes the response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return err
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("close response body failed", slog.Any("error", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SearchContacts looks up contacts whose identifying attributes match q
// (typically a normalized phone number).
func (c *Client) SearchContacts(ctx context.Context, q string) ([]Contact, error) {
	var parsed struct {
		Payload []Contact `json:"payload"`
	}
	path := "/contacts/search?q=" + url.QueryEscape(q)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &parsed); err != nil {
		return nil, err
	}
	return parsed.Payload, nil
}

// CreateContact registers a new contact under the given inbox.
func (c *Client) CreateContact(ctx context.Context, req CreateContactRequest) (Contact, error) {
	var parsed struct {
		Payload struct {
			Contact Contact `json:"contact"`
		} `json:"payload"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/contacts", req, &parsed); err != nil {
		return Contact{}, err
	}
	return parsed.Payload.Contact, nil
}

// ListInboxes returns every inbox of the account.
func (c *Client) ListInboxes(ctx context.Context) ([]Inbox, error) {
	var parsed struct {
		Payload []Inbox `json:"payload"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/inboxes", nil, &parsed); err != nil {
		return nil, err
	}
	return parsed.Payload, nil
}

// CreateInbox creates an API-channel inbox with the given name.
func (c *Client) CreateInbox(ctx context.Context, name string) (Inbox, error) {
	body := map[string]any{
		"name": name,
		"channel": map[string]string{
			"type":        "api",
			"webhook_url": "",
		},
	}
	var inbox Inbox
	if err := c.doJSON(ctx, http.MethodPost, "/inboxes", body, &inbox); err != nil {
		return Inbox{}, err
	}
	return inbox, nil
}

// CreateConversation opens a conversation for a contact within an inbox.
func (c *Client) CreateConversation(ctx context.Context, req CreateConversationRequest) (Conversation, error) {
	var conversation Conversation
	if err := c.doJSON(ctx, http.MethodPost, "/conversations", req, &conversation); err != nil {
		return Conversation{}, err
	}
	return conversation, nil
}

// FilterConversations runs a filter query and returns the matching conversations.
func (c *Client) FilterConversations(ctx context.Context, clauses []FilterClause) ([]Conversation, error) {
	var parsed struct {
		Payload []Conversation `json:"payload"`
	}
	body := map[string]any{"payload": clauses}
	if err := c.doJSON(ctx, http.MethodPost, "/conversations/filter", body, &parsed); err != nil {
		return nil, err
	}
	return parsed.Payload, nil
}

// CreateMessage submits one message into a conversation as a multipart form.
// The content field is always present; when an attachment is carried it is
// written a second time so the API keeps the text alongside the file.
func (c *Client) CreateMessage(ctx context.Context, conversationID int64, req CreateMessageRequest) (Message, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("content", req.Content); err != nil {
		return Message{}, err
	}
	if err := writer.WriteField("message_type", string(req.MessageType)); err != nil {
		return Message{}, err
	}
	if err := writer.WriteField("private", "true"); err != nil {
		return Message{}, err
	}

	if req.AttachmentPath != "" {
		if err := writer.WriteField("content", req.Content); err != nil {
			return Message{}, err
		}
		if err := appendAttachment(writer, req.AttachmentPath); err != nil {
			return Message{}, err
		}
	}

	if err := writer.Close(); err != nil {
		return Message{}, err
	}

	path := fmt.Sprintf("/conversations/%d/messages", conversationID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), &body)
	if err != nil {
		return Message{}, err
	}
	httpReq.Header.Set(tokenHeader, c.token)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Message{}, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("close response body failed", slog.Any("error", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return Message{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var message Message
	if err := json.NewDecoder(resp.Body).Decode(&message); err != nil {
		return Message{}, err
	}
	return message, nil
}

// appendAttachment adds the file at path as an attachments[] part with an
// explicit Content-Type so Chatwoot renders images and audio properly.
func appendAttachment(writer *multipart.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	filename := filepath.Base(path)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachments[]"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy attachment: %w", err)
	}
	return nil
}
