// =============================
// File: internal/pumpapi/ipfs.go
// =============================
package pumpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// IPFSClient uploads token images and metadata through the pump.fun IPFS
// endpoint and proxies raw multipart uploads for the HTTP surface.
type IPFSClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// TokenMetadata is the descriptive metadata attached to a launch.
type TokenMetadata struct {
	Name        string
	Symbol      string
	Description string
	Twitter     string
	Telegram    string
	Website     string
}

// NewIPFSClient creates a client for the given pump.fun base URL.
func NewIPFSClient(baseURL string, logger *zap.Logger) *IPFSClient {
	return &IPFSClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.Named("pump-ipfs"),
	}
}

// UploadMetadata uploads the token image and metadata, returning the content
// URI of the stored metadata document.
func (c *IPFSClient) UploadMetadata(ctx context.Context, meta TokenMetadata, image []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filePart, err := writer.CreateFormFile("file", "token.png")
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := filePart.Write(image); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	fields := map[string]string{
		"name":        meta.Name,
		"symbol":      meta.Symbol,
		"description": meta.Description,
		"twitter":     meta.Twitter,
		"telegram":    meta.Telegram,
		"website":     meta.Website,
		"showName":    "true",
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	status, body, err := c.Upload(ctx, writer.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("IPFS upload returned status %d", status)
	}

	var uploadResponse struct {
		MetadataURI string `json:"metadataUri"`
	}
	if err := json.Unmarshal(body, &uploadResponse); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploadResponse.MetadataURI == "" {
		return "", fmt.Errorf("upload response missing metadata URI")
	}

	c.logger.Debug("Metadata uploaded",
		zap.String("name", meta.Name),
		zap.String("uri", uploadResponse.MetadataURI))

	return uploadResponse.MetadataURI, nil
}

// Upload forwards a prepared multipart body to the storage endpoint and
// returns the upstream status and response bytes unmodified. The upstream
// rejects requests without a browser-looking origin.
func (c *IPFSClient) Upload(ctx context.Context, contentType string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ipfs", body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Origin", "https://pump.fun")
	req.Header.Set("Referer", "https://pump.fun/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	return resp.StatusCode, responseBody, nil
}
