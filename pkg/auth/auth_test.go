package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/waybill/pkg/auth"
)

type stubVerifier struct {
	token string
	id    *auth.Identity
}

func (v stubVerifier) Verify(_ context.Context, raw string) (*auth.Identity, error) {
	if raw != v.token {
		return nil, auth.ErrInvalidToken
	}
	return v.id, nil
}

func TestMiddleware(t *testing.T) {
	verifier := stubVerifier{
		token: "good-token",
		id:    &auth.Identity{Subject: "u-1", Name: "Jana Becker"},
	}

	tests := []struct {
		name     string
		method   string
		header   string
		status   int
		wantName string
	}{
		{"valid token", "GET", "Bearer good-token", http.StatusOK, "Jana Becker"},
		{"lowercase scheme", "GET", "bearer good-token", http.StatusOK, "Jana Becker"},
		{"missing header", "GET", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "GET", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
		{"empty token", "GET", "Bearer   ", http.StatusUnauthorized, ""},
		{"invalid token", "GET", "Bearer forged", http.StatusUnauthorized, ""},
		{"preflight", "OPTIONS", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotName string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id, ok := auth.FromContext(r.Context()); ok {
					gotName = id.Display()
				}
				w.WriteHeader(http.StatusOK)
			})

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			handler := auth.Middleware(verifier, logger)(next)

			req := httptest.NewRequest(tt.method, "/api/drafts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if gotName != tt.wantName {
				t.Errorf("identity = %q, want %q", gotName, tt.wantName)
			}
			if tt.status == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), "bearer token") {
				t.Errorf("body = %s, want bearer token error", rec.Body.String())
			}
		})
	}
}

func TestIdentityDisplay(t *testing.T) {
	tests := []struct {
		name string
		id   auth.Identity
		want string
	}{
		{"name", auth.Identity{Subject: "s", Email: "e@x.test", Name: "N"}, "N"},
		{"email", auth.Identity{Subject: "s", Email: "e@x.test"}, "e@x.test"},
		{"subject", auth.Identity{Subject: "s"}, "s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	if _, ok := auth.FromContext(context.Background()); ok {
		t.Error("FromContext reported identity on empty context")
	}

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{Subject: "u-1"})
	id, ok := auth.FromContext(ctx)
	if !ok || id.Subject != "u-1" {
		t.Errorf("FromContext = %v, %v", id, ok)
	}

	if _, ok := auth.FromContext(auth.WithIdentity(context.Background(), nil)); ok {
		t.Error("FromContext reported nil identity")
	}
}

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     auth.Config
		wantErr string
	}{
		{"disabled", auth.Config{}, ""},
		{"enabled", auth.Config{Enabled: true, Issuer: "https://id.waybill.test", ClientID: "waybill"}, ""},
		{"missing issuer", auth.Config{Enabled: true, ClientID: "waybill"}, "issuer required"},
		{"missing client", auth.Config{Enabled: true, Issuer: "https://id.waybill.test"}, "client_id required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Finalize: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("TEST_AUTH_ENABLED", "true")
	t.Setenv("TEST_AUTH_ISSUER", "https://id.waybill.test")
	t.Setenv("TEST_AUTH_CLIENT_ID", "waybill-api")

	cfg := &auth.Config{}
	err := cfg.Finalize(&auth.Env{
		Enabled:  "TEST_AUTH_ENABLED",
		Issuer:   "TEST_AUTH_ISSUER",
		ClientID: "TEST_AUTH_CLIENT_ID",
	})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !cfg.Enabled || cfg.Issuer != "https://id.waybill.test" || cfg.ClientID != "waybill-api" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestNewVerifierUnreachableIssuer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := auth.NewVerifier(context.Background(), &auth.Config{Enabled: true, Issuer: srv.URL, ClientID: "waybill"})
	if err == nil {
		t.Fatal("NewVerifier succeeded without discovery document")
	}
	if errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("err = %v, want discovery error", err)
	}
}
