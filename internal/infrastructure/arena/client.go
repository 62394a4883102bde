package arena

import (
	"bytes"
	"context"
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
	// DefaultBaseURL is the public Are.na v2 API
	DefaultBaseURL = "https://api.are.na/v2"

	// DefaultPerPage is the page size used for paginated listings
	DefaultPerPage = 100

	maxAttempts = 3
)

// Client handles communication with the Are.na API
type Client struct {
	httpClient  *http.Client
	token       string
	baseURL     string
	perPage     int
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	log         logger.Logger
}

// NewClient creates an Are.na client that spaces requests at least delay apart
func NewClient(token, baseURL string, perPage int, delay time.Duration, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		token:       token,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		perPage:     perPage,
		rateLimiter: rate.NewLimiter(rate.Every(delay), 1),
		backoff:     exponentialBackoff,
		log:         log,
	}
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// do executes a request with rate limiting and retries on transport errors, 429 and 5xx.
// The response body is returned for 2xx responses.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("User-Agent", "tastelens/1.0")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Warn("arena request error",
				logger.String("method", method),
				logger.String("path", path),
				logger.Int("attempt", attempt),
				logger.Error(err))
			lastErr = fmt.Errorf("%w: %v", domain.ErrArenaAPIFailure, err)
			if !c.sleep(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return respBody, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, method, path)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.log.Warn("arena API error",
				logger.String("method", method),
				logger.String("path", path),
				logger.Int("status", resp.StatusCode),
				logger.Int("attempt", attempt))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrArenaAPIFailure, resp.StatusCode)
			if !c.sleep(ctx, attempt) {
				return nil, ctx.Err()
			}
		default:
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrArenaAPIFailure, resp.StatusCode, string(respBody))
		}
	}

	return nil, lastErr
}

func (c *Client) sleep(ctx context.Context, attempt int) bool {
	if attempt >= maxAttempts {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.backoff(attempt)):
		return true
	}
}

// paginate requests successive pages until one comes back shorter than perPage
func (c *Client) paginate(ctx context.Context, path string, decode func([]byte) (int, error)) error {
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", fmt.Sprintf("%d", page))
		query.Set("per", fmt.Sprintf("%d", c.perPage))

		body, err := c.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return err
		}

		n, err := decode(body)
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if n < c.perPage {
			return nil
		}
	}
}

// ListChannels returns every channel owned by the user
func (c *Client) ListChannels(ctx context.Context, userSlug string) ([]domain.Channel, error) {
	var channels []domain.Channel
	err := c.paginate(ctx, "/users/"+url.PathEscape(userSlug)+"/channels", func(body []byte) (int, error) {
		var page channelsPage
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		for _, ch := range page.Channels {
			channels = append(channels, MapToChannel(ch))
		}
		return len(page.Channels), nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug("listed channels", logger.String("user", userSlug), logger.Int("count", len(channels)))
	return channels, nil
}

// ListChannelContents returns every block in a channel. Nested channels are skipped.
func (c *Client) ListChannelContents(ctx context.Context, channelSlug string) ([]domain.Block, error) {
	var blocks []domain.Block
	err := c.paginate(ctx, "/channels/"+url.PathEscape(channelSlug)+"/contents", func(body []byte) (int, error) {
		var page contentsPage
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		for _, b := range page.Contents {
			if b.BaseClass == "Channel" || b.Class == "Channel" {
				continue
			}
			blocks = append(blocks, MapToBlock(b))
		}
		return len(page.Contents), nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug("listed channel contents", logger.String("channel", channelSlug), logger.Int("count", len(blocks)))
	return blocks, nil
}

// BlockChannels returns the channels a block is connected to
func (c *Client) BlockChannels(ctx context.Context, blockID int64) ([]domain.ChannelRef, error) {
	refs := []domain.ChannelRef{} // non-nil: connections are known, possibly none
	err := c.paginate(ctx, fmt.Sprintf("/blocks/%d/channels", blockID), func(body []byte) (int, error) {
		var page channelsPage
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		for _, ch := range page.Channels {
			refs = append(refs, MapToChannel(ch).Ref())
		}
		return len(page.Channels), nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// CreateChannel creates a channel with the given title and status (public, closed, private)
func (c *Client) CreateChannel(ctx context.Context, title, status string) (*domain.Channel, error) {
	if status == "" {
		status = "closed"
	}

	body, err := c.do(ctx, http.MethodPost, "/channels", nil, map[string]string{
		"title":  title,
		"status": status,
	})
	if err != nil {
		return nil, err
	}

	var created apiChannel
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	channel := MapToChannel(created)
	c.log.Info("created channel", logger.String("title", channel.Title), logger.String("slug", channel.Slug))
	return &channel, nil
}

// Connect attaches an existing block to a channel
func (c *Client) Connect(ctx context.Context, channelSlug string, blockID int64) error {
	_, err := c.do(ctx, http.MethodPost, "/channels/"+url.PathEscape(channelSlug)+"/connections", nil, map[string]any{
		"connectable_type": "Block",
		"connectable_id":   blockID,
	})
	return err
}

// Disconnect removes a block from a channel
func (c *Client) Disconnect(ctx context.Context, channelSlug string, blockID int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/channels/%s/blocks/%d", url.PathEscape(channelSlug), blockID), nil, nil)
	return err
}

// UpdateBlockDescription replaces a block's description
func (c *Client) UpdateBlockDescription(ctx context.Context, blockID int64, description string) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/blocks/%d", blockID), nil, map[string]string{
		"description": description,
	})
	return err
}
