package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pavelanni/dumpquiz/internal/qa"
)

var testRecord = qa.Record{
	ID:       "QUESTION NO: 7",
	Question: "Which service stores objects?",
	Options:  []string{"A. S3", "B. EC2", "C. RDS"},
	Answer:   qa.AnswerSet{"A"},
}

// fakeAPI serves the two OpenAI endpoints the client uses and records the
// last chat request body.
func fakeAPI(t *testing.T, reply string) (*httptest.Server, *string) {
	t.Helper()
	var lastBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_, _ = io.WriteString(w, `{"object":"list","data":[{"id":"test-model","object":"model"}]}`)
		case "/v1/chat/completions":
			b, _ := io.ReadAll(r.Body)
			lastBody = string(b)
			resp := map[string]any{
				"id":     "chatcmpl-1",
				"object": "chat.completion",
				"model":  "test-model",
				"choices": []map[string]any{{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				}},
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &lastBody
}

func newTestClient(t *testing.T, url, variant string) *Client {
	t.Helper()
	c, err := New(url+"/v1", "key", "test-model", variant)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsUnknownVariant(t *testing.T) {
	if _, err := New("", "key", "m", "verbose"); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestPing(t *testing.T) {
	srv, _ := fakeAPI(t, "")
	c := newTestClient(t, srv.URL, "brief")
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestExplain(t *testing.T) {
	srv, body := fakeAPI(t, "  S3 is object storage.  ")
	c := newTestClient(t, srv.URL, "detailed")

	got, err := c.Explain(context.Background(), testRecord)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if got != "S3 is object storage." {
		t.Errorf("Explain() = %q", got)
	}
	if !strings.Contains(*body, "Which service stores objects?") {
		t.Error("request should carry the question text")
	}
	if !strings.Contains(*body, "B. EC2") {
		t.Error("request should carry the options")
	}
}

func TestExplainEmptyReply(t *testing.T) {
	srv, _ := fakeAPI(t, "   ")
	c := newTestClient(t, srv.URL, "brief")

	_, err := c.Explain(context.Background(), testRecord)
	if !errors.Is(err, ErrEmptyExplanation) {
		t.Errorf("err = %v, want ErrEmptyExplanation", err)
	}
}

func TestWithLanguage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"en", "English"},
		{"", "English"},
		{"zh", "Simplified Chinese"},
		{"zh-CN", "Simplified Chinese"},
		{"German", "German"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := &Client{}
			if got := c.WithLanguage(tt.in).language; got != tt.want {
				t.Errorf("WithLanguage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
