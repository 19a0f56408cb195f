package chatwoot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRequiresConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "missing account", cfg: Config{Token: "t", Endpoint: "http://x"}},
		{name: "missing token", cfg: Config{Account: "1", Endpoint: "http://x"}},
		{name: "missing endpoint", cfg: Config{Account: "1", Token: "t"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(nil, tc.cfg); err == nil {
				t.Fatal("expected construction error")
			}
		})
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(nil, Config{Account: "7", Token: "test-token", Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestSearchContacts(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/7/contacts/search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("api_access_token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.URL.Query().Get("q"); got != "+612345678" {
			t.Errorf("q = %q, want %q", got, "+612345678")
		}
		_, _ = w.Write([]byte(`{"payload":[{"id":11,"name":"Ana","phone_number":"+612345678"}]}`))
	}))

	contacts, err := client.SearchContacts(context.Background(), "+612345678")
	if err != nil {
		t.Fatalf("search contacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].ID != 11 || contacts[0].Name != "Ana" {
		t.Fatalf("unexpected contacts: %+v", contacts)
	}
}

func TestCreateContactEnvelope(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/accounts/7/contacts" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		_, _ = w.Write([]byte(`{"payload":{"contact":{"id":42,"name":"Ana","phone_number":"+612345678"}}}`))
	}))

	contact, err := client.CreateContact(context.Background(), CreateContactRequest{
		InboxID:     1,
		Name:        "Ana",
		PhoneNumber: "+612345678",
	})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	if contact.ID != 42 {
		t.Fatalf("contact id = %d, want 42", contact.ID)
	}
}

func TestStatusErrorCarriesCodeAndBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))

	_, err := client.ListInboxes(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusInternalServerError || statusErr.Body != "boom" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestCreateMessageTextOnly(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/7/conversations/5/messages" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("content"); got != "Hola" {
			t.Errorf("content = %q, want %q", got, "Hola")
		}
		if got := r.FormValue("message_type"); got != "incoming" {
			t.Errorf("message_type = %q", got)
		}
		if got := r.FormValue("private"); got != "true" {
			t.Errorf("private = %q", got)
		}
		if len(r.MultipartForm.File["attachments[]"]) != 0 {
			t.Error("unexpected attachment part")
		}
		_, _ = w.Write([]byte(`{"id":9,"content":"Hola"}`))
	}))

	message, err := client.CreateMessage(context.Background(), 5, CreateMessageRequest{
		Content:     "Hola",
		MessageType: MessageIncoming,
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if message.ID != 9 {
		t.Fatalf("message id = %d, want 9", message.ID)
	}
}

func TestCreateMessageWithAttachment(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write attachment: %v", err)
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		// Content is duplicated next to the file part.
		if values := r.MultipartForm.Value["content"]; len(values) != 2 || values[0] != "Archivo adjunto" {
			t.Errorf("content values = %+v", values)
		}
		files := r.MultipartForm.File["attachments[]"]
		if len(files) != 1 {
			t.Fatalf("attachment parts = %d, want 1", len(files))
		}
		if files[0].Filename != "photo.png" {
			t.Errorf("filename = %q", files[0].Filename)
		}
		if ct := files[0].Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/png") {
			t.Errorf("attachment content type = %q", ct)
		}
		_, _ = w.Write([]byte(`{"id":10,"content":"Archivo adjunto"}`))
	}))

	_, err := client.CreateMessage(context.Background(), 5, CreateMessageRequest{
		Content:        "Archivo adjunto",
		MessageType:    MessageOutgoing,
		AttachmentPath: path,
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
}
