package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetTokenMetadata(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/"+mint.String(), r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"name":        "Test Token",
			"symbol":      "TEST",
			"image_uri":   "https://cdn.example/test.png",
			"description": "a token",
		})
	}))
	defer server.Close()

	service := NewService(server.URL, zap.NewNop())
	meta, err := service.GetTokenMetadata(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, "Test Token", meta.Name)
	assert.Equal(t, "TEST", meta.Symbol)
	assert.Equal(t, "https://cdn.example/test.png", meta.Image)
}

func TestGetTokenMetadataCached(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"name": "Test", "symbol": "TEST"})
	}))
	defer server.Close()

	service := NewService(server.URL, zap.NewNop())
	_, err := service.GetTokenMetadata(context.Background(), mint)
	require.NoError(t, err)
	_, err = service.GetTokenMetadata(context.Background(), mint)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load(), "second lookup must hit the cache")
}

func TestGetTokenMetadataKnownTokenFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	service := NewService(server.URL, zap.NewNop())
	wsol := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	meta, err := service.GetTokenMetadata(context.Background(), wsol)
	require.NoError(t, err)
	assert.Equal(t, "SOL", meta.Symbol)
}

func TestGetTokenMetadataIndexerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewService(server.URL, zap.NewNop())
	_, err := service.GetTokenMetadata(context.Background(), solana.NewWallet().PublicKey())
	require.Error(t, err)
}

func TestGetTokenMetadataEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	service := NewService(server.URL, zap.NewNop())
	_, err := service.GetTokenMetadata(context.Background(), solana.NewWallet().PublicKey())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no metadata")
}
