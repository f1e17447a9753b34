package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(serverURL string) *Client {
	return NewClient(ClientConfig{
		APIURL:   serverURL + "/hub/api",
		ClientID: "service-quotaview",
		APIToken: "secret-token",
	})
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hub/api/oauth2/token" {
			t.Errorf("Path = %q, want /hub/api/oauth2/token", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("client_id"); got != "service-quotaview" {
			t.Errorf("client_id = %q", got)
		}
		if got := r.PostForm.Get("client_secret"); got != "secret-token" {
			t.Errorf("client_secret = %q", got)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("code"); got != "auth-code-1" {
			t.Errorf("code = %q", got)
		}
		if got := r.PostForm.Get("redirect_uri"); got != "http://localhost:8000/services/quotaview/oauth_callback" {
			t.Errorf("redirect_uri = %q", got)
		}

		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "access-1",
			"token_type":   "Bearer",
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	token, err := c.ExchangeCode(context.Background(), "auth-code-1",
		"http://localhost:8000/services/quotaview/oauth_callback")
	if err != nil {
		t.Fatalf("ExchangeCode failed: %v", err)
	}
	if token != "access-1" {
		t.Errorf("token = %q, want access-1", token)
	}
}

func TestExchangeCode_Failure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid code", http.StatusForbidden)
		}},
		{"missing token", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"token_type":"Bearer"}`))
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := newTestClient(server.URL)
			if _, err := c.ExchangeCode(context.Background(), "code", "uri"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hub/api/user" {
			t.Errorf("Path = %q, want /hub/api/user", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "token access-1" {
			t.Errorf("Authorization = %q, want token access-1", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":  "alice",
			"admin": true,
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	user, err := c.CurrentUser(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.Name != "alice" || !user.Admin {
		t.Errorf("user = %+v", user)
	}
}

func TestCurrentUser_MissingName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"admin": false}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.CurrentUser(context.Background(), "access-1"); err == nil {
		t.Fatal("expected error for user response without name")
	}
}
