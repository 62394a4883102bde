package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastelens/backend/internal/domain"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("key", "https://example.com/", "", 0, nil)

	assert.Equal(t, DefaultModel, client.model)
	assert.Equal(t, "https://example.com", client.baseURL)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.log)
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.Equal(t, "describe", req.Contents[0].Parts[0].Text)
		assert.Equal(t, "image/png", req.Contents[0].Parts[1].InlineData.MimeType)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), req.Contents[0].Parts[1].InlineData.Data)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"vibe\":"},{"text":"[\"calm\"]}"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "test-model", time.Millisecond, nil)

	text, err := client.Generate(context.Background(), "describe", &domain.Image{Data: []byte("png-bytes"), MIMEType: "image/png"})

	require.NoError(t, err)
	assert.Equal(t, `{"vibe":["calm"]}`, text)
}

func TestGenerate_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "m", time.Millisecond, nil)

	_, err := client.Generate(context.Background(), "p", nil)

	assert.ErrorIs(t, err, domain.ErrModelFailure)
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "m", time.Millisecond, nil)

	_, err := client.Generate(context.Background(), "p", nil)

	assert.ErrorIs(t, err, domain.ErrModelFailure)
}

func TestFetchImage(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n0000")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/typed.jpg":
			w.Header().Set("Content-Type", "image/jpeg; charset=binary")
			w.Write([]byte("jpeg"))
		case "/untyped":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(pngHeader)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient("k", server.URL, "m", time.Millisecond, nil)
	ctx := context.Background()

	img, err := client.FetchImage(ctx, server.URL+"/typed.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, []byte("jpeg"), img.Data)

	img, err = client.FetchImage(ctx, server.URL+"/untyped")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)

	_, err = client.FetchImage(ctx, server.URL+"/missing")
	assert.ErrorIs(t, err, domain.ErrImageFetchFailure)
}

func TestFetchImage_RejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	client := NewClient("k", server.URL, "m", time.Millisecond, nil)
	client.maxImageBytes = 10

	img, err := client.FetchImage(context.Background(), server.URL+"/exact")
	require.NoError(t, err)
	assert.Len(t, img.Data, 10)

	client.maxImageBytes = 9
	_, err = client.FetchImage(context.Background(), server.URL+"/over")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestFetchImage_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient("k", url, "m", time.Millisecond, nil)
	_, err := client.FetchImage(context.Background(), url+"/gone.png")
	assert.ErrorIs(t, err, domain.ErrImageFetchFailure)
}
