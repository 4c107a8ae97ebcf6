package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/waybill/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=waybillstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/waybillstore;"

func TestNewReturnsSystem(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "waybill",
		ConnectionString: azuriteConnString,
	}

	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "waybill",
		ConnectionString: "not-a-connection-string",
	}

	_, err := storage.New(cfg, slog.Default())
	if err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("download: %w", storage.ErrNotFound), http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid", "documents/abc.pdf", nil},
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "documents/../secrets/key", storage.ErrInvalidKey},
		{"double dot in middle", "cache/..hidden/record.json", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := storage.ValidateKey(tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestKeyValidationBeforeNetwork(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "waybill",
		ConnectionString: azuriteConnString,
		KeyPrefix:        "tenant",
	}

	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	key := "documents/../secrets/key"

	if err := sys.Upload(ctx, key, bytes.NewReader(nil), "application/pdf"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Upload() error = %v, want ErrInvalidKey", err)
	}
	if _, err := sys.Download(ctx, key); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Download() error = %v, want ErrInvalidKey", err)
	}
	if err := sys.Delete(ctx, ""); !errors.Is(err, storage.ErrEmptyKey) {
		t.Errorf("Delete() error = %v, want ErrEmptyKey", err)
	}
	if _, err := sys.Exists(ctx, key); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Exists() error = %v, want ErrInvalidKey", err)
	}
}
