package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
	"github.com/tastelens/backend/internal/usecase"
)

const (
	// maxUploadImages caps the number of files accepted by one match request
	maxUploadImages = 8
	// maxImageBytes caps the size of each uploaded image
	maxImageBytes = 10 << 20
)

// TriageUsecase is the manual classification flow behind the triage endpoints
type TriageUsecase interface {
	StartSession(ctx context.Context, channelSlug string) (*usecase.TriageView, error)
	Current(ctx context.Context, sessionID string) (*usecase.TriageView, error)
	Classify(ctx context.Context, sessionID string, destinations []string) (*usecase.TriageView, error)
	Skip(ctx context.Context, sessionID string) (*usecase.TriageView, error)
	Undo(ctx context.Context, sessionID string) (*usecase.TriageView, error)
	RemoveConnection(ctx context.Context, channelSlug string, blockID int64) error
}

// MatchUsecase ranks indexed references against query images
type MatchUsecase interface {
	MatchImages(ctx context.Context, images []domain.Image) (*usecase.MatchResponse, error)
	MatchImageURLs(ctx context.Context, urls []string) (*usecase.MatchResponse, error)
}

// StyleGuideUsecase serves persisted style guides
type StyleGuideUsecase interface {
	GetStyleGuide(ctx context.Context, channelSlug string) (*domain.AggregatedStyleGuide, error)
}

// Handler holds dependencies for HTTP handlers.
// A nil usecase makes its endpoints answer 503.
type Handler struct {
	triage      TriageUsecase
	matcher     MatchUsecase
	styleGuides StyleGuideUsecase
	log         logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(triage TriageUsecase, matcher MatchUsecase, styleGuides StyleGuideUsecase, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		triage:      triage,
		matcher:     matcher,
		styleGuides: styleGuides,
		log:         log,
	}
}

type sessionRequest struct {
	Channel string `json:"channel"`
}

type stepRequest struct {
	Session string `json:"session"`
}

type classifyRequest struct {
	Session      string   `json:"session"`
	Destinations []string `json:"destinations"`
}

type deleteRequest struct {
	Channel string `json:"channel"`
	BlockID int64  `json:"blockId"`
}

type matchURLRequest struct {
	ImageURLs []string `json:"imageUrls"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tastelens-backend",
		"version": "1.0.0",
	})
}

// StartSession queues a channel's unorganized blocks into a new triage session
func (h *Handler) StartSession(c *gin.Context) {
	if !h.available(c, h.triage != nil, "triage") {
		return
	}

	var req sessionRequest
	if !h.bind(c, &req) {
		return
	}

	view, err := h.triage.StartSession(c.Request.Context(), req.Channel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// CurrentBlock returns the block a session is presenting
func (h *Handler) CurrentBlock(c *gin.Context) {
	if !h.available(c, h.triage != nil, "triage") {
		return
	}

	view, err := h.triage.Current(c.Request.Context(), c.Query("session"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Classify connects the current block to the chosen destinations and advances
func (h *Handler) Classify(c *gin.Context) {
	if !h.available(c, h.triage != nil, "triage") {
		return
	}

	var req classifyRequest
	if !h.bind(c, &req) {
		return
	}

	view, err := h.triage.Classify(c.Request.Context(), req.Session, req.Destinations)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Skip advances past the current block without connecting it
func (h *Handler) Skip(c *gin.Context) {
	if !h.available(c, h.triage != nil, "triage") {
		return
	}

	var req stepRequest
	if !h.bind(c, &req) {
		return
	}

	view, err := h.triage.Skip(c.Request.Context(), req.Session)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Undo reverts the last applied classification
func (h *Handler) Undo(c *gin.Context) {
	if !h.available(c, h.triage != nil, "triage") {
		return
	}

	var req stepRequest
	if !h.bind(c, &req) {
		return
	}

	view, err := h.triage.Undo(c.Request.Context(), req.Session)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteConnection removes a block from a channel
func (h *Handler) DeleteConnection(c *gin.Context) {
	if !h.available(c, h.triage != nil, "triage") {
		return
	}

	var req deleteRequest
	if !h.bind(c, &req) {
		return
	}
	if req.BlockID <= 0 {
		h.respondError(c, fmt.Errorf("%w: blockId is required", domain.ErrInvalidRequest))
		return
	}

	if err := h.triage.RemoveConnection(c.Request.Context(), req.Channel, req.BlockID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "deleted",
		"channel": req.Channel,
		"blockId": req.BlockID,
	})
}

// Match ranks indexed references against uploaded images or image URLs.
// Multipart requests carry files under "images"; JSON requests carry {"imageUrls": [...]}.
func (h *Handler) Match(c *gin.Context) {
	if !h.available(c, h.matcher != nil, "matching") {
		return
	}

	var (
		resp *usecase.MatchResponse
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var images []domain.Image
		images, err = readUploads(c)
		if err == nil {
			resp, err = h.matcher.MatchImages(c.Request.Context(), images)
		}
	} else {
		var req matchURLRequest
		if !h.bind(c, &req) {
			return
		}
		resp, err = h.matcher.MatchImageURLs(c.Request.Context(), req.ImageURLs)
	}

	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStyleGuide returns the persisted style guide of a channel
func (h *Handler) GetStyleGuide(c *gin.Context) {
	if !h.available(c, h.styleGuides != nil, "style guides") {
		return
	}

	guide, err := h.styleGuides.GetStyleGuide(c.Request.Context(), c.Param("channel"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, guide)
}

func readUploads(c *gin.Context) ([]domain.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", domain.ErrInvalidRequest)
	}
	if len(files) > maxUploadImages {
		return nil, fmt.Errorf("%w: at most %d images per request", domain.ErrInvalidRequest, maxUploadImages)
	}

	images := make([]domain.Image, 0, len(files))
	for _, fh := range files {
		img, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func readUpload(fh *multipart.FileHeader) (domain.Image, error) {
	if fh.Size > maxImageBytes {
		return domain.Image{}, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidRequest, fh.Filename, maxImageBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return domain.Image{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return domain.Image{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if len(data) == 0 {
		return domain.Image{}, fmt.Errorf("%w: %s is empty", domain.ErrInvalidRequest, fh.Filename)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return domain.Image{}, fmt.Errorf("%w: %s is not an image", domain.ErrInvalidRequest, fh.Filename)
	}

	return domain.Image{Data: data, MIMEType: mimeType}, nil
}

func (h *Handler) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return false
	}
	return true
}

func (h *Handler) available(c *gin.Context, ok bool, feature string) bool {
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": feature + " is not configured",
		})
	}
	return ok
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQueueExhausted), errors.Is(err, domain.ErrNothingToUndo):
		return http.StatusConflict
	case errors.Is(err, domain.ErrArenaAPIFailure),
		errors.Is(err, domain.ErrModelFailure),
		errors.Is(err, domain.ErrImageFetchFailure),
		errors.Is(err, domain.ErrUnparseableOutput):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			logger.String("path", c.FullPath()),
			logger.Int("status", status),
			logger.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
