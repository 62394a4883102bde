package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

// Triage actions reported to the Recorder
const (
	ActionClassify = "classify"
	ActionSkip     = "skip"
	ActionUndo     = "undo"
	ActionDelete   = "delete"
)

// TriageService drives manual classification: it queues a channel's unorganized blocks
// into a session and applies the user's decisions one block at a time
type TriageService struct {
	arena          domain.ArenaClient
	directory      *ChannelDirectory
	classification *ClassificationService
	sessions       *SessionStore
	recorder       Recorder
	log            logger.Logger
	concurrency    int
}

// NewTriageService creates a new triage service with dependencies
func NewTriageService(
	arena domain.ArenaClient,
	directory *ChannelDirectory,
	classification *ClassificationService,
	sessions *SessionStore,
	recorder Recorder,
	log logger.Logger,
) *TriageService {
	if log == nil {
		log = logger.NewNop()
	}
	return &TriageService{
		arena:          arena,
		directory:      directory,
		classification: classification,
		sessions:       sessions,
		recorder:       recorderOrNop(recorder),
		log:            log,
		concurrency:    DefaultConcurrency,
	}
}

// TriageView is a session snapshot plus the classifier's suggestion for the current block
type TriageView struct {
	SessionSnapshot
	Suggestion *domain.ClassificationDecision `json:"suggestion,omitempty"`
}

// StartSession opens a session over the blocks of channelSlug that are not yet organized
func (s *TriageService) StartSession(ctx context.Context, channelSlug string) (*TriageView, error) {
	if strings.TrimSpace(channelSlug) == "" {
		return nil, fmt.Errorf("%w: channel is required", domain.ErrInvalidRequest)
	}

	blocks, err := s.arena.ListChannelContents(ctx, channelSlug)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", channelSlug, err)
	}

	keep := make([]bool, len(blocks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range blocks {
		g.Go(func() error {
			conns, err := s.arena.BlockChannels(gctx, blocks[i].ID)
			if err != nil {
				return fmt.Errorf("connections of %d: %w", blocks[i].ID, err)
			}
			blocks[i].Connections = conns
			keep[i] = !s.classification.IsOrganized(blocks[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	queue := make([]domain.Block, 0, len(blocks))
	for i, b := range blocks {
		if keep[i] {
			queue = append(queue, b)
		}
	}

	sess := s.sessions.Create(channelSlug)
	sess.Lock()
	defer sess.Unlock()

	if err := sess.Load(queue); err != nil {
		return nil, err
	}
	s.log.Info("Triage session started",
		logger.String("session", sess.ID),
		logger.String("channel", channelSlug),
		logger.Int("queued", len(queue)),
		logger.Int("organized", len(blocks)-len(queue)),
	)
	return s.view(ctx, sess), nil
}

// Current returns the session's current state and block
func (s *TriageService) Current(ctx context.Context, sessionID string) (*TriageView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	return s.view(ctx, sess), nil
}

// Classify connects the current block to every destination and advances
func (s *TriageService) Classify(ctx context.Context, sessionID string, destinations []string) (*TriageView, error) {
	dests := make([]domain.Destination, 0, len(destinations))
	for _, key := range destinations {
		if d := domain.ParseDestination(key); d.Key() != "" {
			dests = append(dests, d)
		}
	}
	if len(dests) == 0 {
		return nil, fmt.Errorf("%w: at least one destination is required", domain.ErrInvalidRequest)
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	block, err := sess.Current()
	if err != nil {
		return nil, err
	}

	applied := make([]domain.ChannelRef, 0, len(dests))
	for _, dest := range dests {
		ref, err := s.directory.Resolve(ctx, dest, true)
		if err != nil {
			return nil, err
		}
		if err := s.arena.Connect(ctx, ref.Slug, block.ID); err != nil {
			// connections made so far stay; the block is not advanced
			return nil, fmt.Errorf("connect %d to %s: %w", block.ID, ref.Slug, err)
		}
		applied = append(applied, ref)
	}

	if err := sess.Advance(applied); err != nil {
		return nil, err
	}
	s.recorder.RecordTriage(ActionClassify)
	return s.view(ctx, sess), nil
}

// Skip advances without connecting the current block
func (s *TriageService) Skip(ctx context.Context, sessionID string) (*TriageView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	if err := sess.Skip(); err != nil {
		return nil, err
	}
	s.recorder.RecordTriage(ActionSkip)
	return s.view(ctx, sess), nil
}

// Undo disconnects the last classified block from the channels it was connected to
// and presents it again
func (s *TriageService) Undo(ctx context.Context, sessionID string) (*TriageView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	block, applied, err := sess.LastApplied()
	if err != nil {
		return nil, err
	}
	for _, ref := range applied {
		if err := s.arena.Disconnect(ctx, ref.Slug, block.ID); err != nil {
			return nil, fmt.Errorf("disconnect %d from %s: %w", block.ID, ref.Slug, err)
		}
	}

	if err := sess.Undo(); err != nil {
		return nil, err
	}
	s.recorder.RecordTriage(ActionUndo)
	return s.view(ctx, sess), nil
}

// RemoveConnection disconnects a block from a channel outside any session
func (s *TriageService) RemoveConnection(ctx context.Context, channelSlug string, blockID int64) error {
	if strings.TrimSpace(channelSlug) == "" || blockID <= 0 {
		return fmt.Errorf("%w: channel and block id are required", domain.ErrInvalidRequest)
	}
	if err := s.arena.Disconnect(ctx, channelSlug, blockID); err != nil {
		return err
	}
	s.recorder.RecordTriage(ActionDelete)
	s.log.Info("Removed connection",
		logger.String("channel", channelSlug),
		logger.Int64("block", blockID),
	)
	return nil
}

// view snapshots the session and attaches a suggestion for the current block.
// A failed suggestion is logged and left out.
func (s *TriageService) view(ctx context.Context, sess *Session) *TriageView {
	v := &TriageView{SessionSnapshot: sess.Snapshot()}
	if v.Current == nil || s.classification == nil {
		return v
	}

	decision, err := s.classification.ClassifyBlock(ctx, *v.Current)
	if err != nil {
		s.log.Debug("No suggestion for block", logger.Int64("block", v.Current.ID), logger.Error(err))
		return v
	}
	v.Suggestion = &decision
	return v
}
