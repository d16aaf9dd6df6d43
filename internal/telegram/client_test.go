package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-token")
	c.baseURL = srv.URL + "/bottest-token"
	return c
}

func TestSendText(t *testing.T) {
	var got sendMessageRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	if err := c.SendText(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if got.ChatID != 42 || got.Text != "hello" {
		t.Fatalf("request = %+v", got)
	}
}

func TestSendTextAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	})

	err := c.SendText(context.Background(), 42, "hello")
	if err == nil {
		t.Fatal("expected error for ok=false response")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "blocked") {
		t.Fatalf("err = %v", err)
	}
}

func TestGetUpdates(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req getUpdatesRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Offset != 7 {
			t.Errorf("offset = %d, want 7", req.Offset)
		}
		w.Write([]byte(`{"ok":true,"result":[{"update_id":8,"message":{"message_id":1,"text":"/start","chat":{"id":42,"type":"private"}}}]}`))
	})

	updates, err := c.GetUpdates(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}
	if updates[0].Message.Chat.ID != 42 || updates[0].Message.Text != "/start" {
		t.Fatalf("update = %+v", updates[0])
	}
}

func TestCommandNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/start", "/start"},
		{"/Start", "/start"},
		{"/today@daylinebot", "/today"},
		{"/stats extra words", "/stats"},
	}
	for _, tt := range tests {
		if got := command(tt.in); got != tt.want {
			t.Errorf("command(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenForLabels(t *testing.T) {
	token, ok := tokenFor(labelAggressionHigh)
	if !ok || token != "high" {
		t.Fatalf("tokenFor(high label) = %q, %v", token, ok)
	}
	token, ok = tokenFor(labelMood5)
	if !ok || token != "5" {
		t.Fatalf("tokenFor(mood 5 label) = %q, %v", token, ok)
	}
	if _, ok := tokenFor("7.5"); ok {
		t.Fatal("free text should not map to a token")
	}
}
