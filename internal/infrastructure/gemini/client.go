package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

const (
	// DefaultModel is the model used when none is configured
	DefaultModel = "gemini-2.0-flash"

	defaultMaxImageBytes = 20 << 20
)

// Client calls the Gemini generateContent endpoint
type Client struct {
	httpClient    *http.Client
	apiKey        string
	baseURL       string
	model         string
	rateLimiter   *rate.Limiter
	maxImageBytes int64
	log           logger.Logger
}

// NewClient creates a Gemini client that makes at most one call per delay
func NewClient(apiKey, baseURL, model string, delay time.Duration, log logger.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:        apiKey,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		model:         model,
		rateLimiter:   rate.NewLimiter(rate.Every(delay), 1),
		maxImageBytes: defaultMaxImageBytes,
		log:           log,
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends a prompt, with an optional inline image, and returns the text reply
func (c *Client) Generate(ctx context.Context, prompt string, image *domain.Image) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	parts := []part{{Text: prompt}}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}})
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: parts}},
		GenerationConfig: generationConfig{Temperature: 0.2},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrModelFailure, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("model request failed",
			logger.Int("status", resp.StatusCode),
			logger.String("body", string(respBody)))
		return "", fmt.Errorf("%w: status %d", domain.ErrModelFailure, resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrModelFailure, err)
	}

	var text strings.Builder
	for _, candidate := range decoded.Candidates {
		for _, p := range candidate.Content.Parts {
			text.WriteString(p.Text)
		}
		if text.Len() > 0 {
			break
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: empty response", domain.ErrModelFailure)
	}
	return text.String(), nil
}

// FetchImage downloads an image and sniffs its MIME type when the server omits it
func (c *Client) FetchImage(ctx context.Context, imageURL string) (*domain.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	req.Header.Set("User-Agent", "tastelens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrImageFetchFailure, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageFetchFailure, err)
	}
	if int64(len(data)) > c.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidRequest, c.maxImageBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}

	return &domain.Image{Data: data, MIMEType: mimeType}, nil
}
