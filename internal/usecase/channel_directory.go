package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

// newChannelStatus is the visibility given to channels created for a destination
const newChannelStatus = "closed"

// ChannelDirectory resolves destinations to the user's channels, creating
// missing ones on demand. The channel list is fetched once and then kept current.
type ChannelDirectory struct {
	arena    domain.ArenaClient
	userSlug string
	log      logger.Logger

	mu       sync.Mutex
	loaded   bool
	channels []domain.ChannelRef
}

// NewChannelDirectory creates a directory over the channels of userSlug
func NewChannelDirectory(arena domain.ArenaClient, userSlug string, log logger.Logger) *ChannelDirectory {
	if log == nil {
		log = logger.NewNop()
	}
	return &ChannelDirectory{arena: arena, userSlug: userSlug, log: log}
}

// Resolve returns the channel for dest, matched by title case-insensitively or by slug.
// When create is true a missing channel is created under the destination's title.
func (d *ChannelDirectory) Resolve(ctx context.Context, dest domain.Destination, create bool) (domain.ChannelRef, error) {
	if dest.Key() == "" {
		return domain.ChannelRef{}, fmt.Errorf("%w: empty destination", domain.ErrInvalidRequest)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.load(ctx); err != nil {
		return domain.ChannelRef{}, err
	}

	if ref, ok := d.find(dest); ok {
		return ref, nil
	}
	if !create {
		return domain.ChannelRef{}, fmt.Errorf("%w: channel for %s", domain.ErrNotFound, dest)
	}

	ch, err := d.arena.CreateChannel(ctx, dest.ChannelTitle(), newChannelStatus)
	if err != nil {
		return domain.ChannelRef{}, fmt.Errorf("create channel %q: %w", dest.ChannelTitle(), err)
	}
	d.log.Info("Created destination channel",
		logger.String("title", ch.Title),
		logger.String("slug", ch.Slug),
	)

	ref := ch.Ref()
	d.channels = append(d.channels, ref)
	return ref, nil
}

func (d *ChannelDirectory) load(ctx context.Context) error {
	if d.loaded {
		return nil
	}
	if d.userSlug == "" {
		d.loaded = true
		return nil
	}

	channels, err := d.arena.ListChannels(ctx, d.userSlug)
	if err != nil {
		return fmt.Errorf("list channels of %s: %w", d.userSlug, err)
	}
	for _, ch := range channels {
		d.channels = append(d.channels, ch.Ref())
	}
	d.loaded = true
	return nil
}

func (d *ChannelDirectory) find(dest domain.Destination) (domain.ChannelRef, bool) {
	title := dest.ChannelTitle()
	slug := dest.ChannelSlug()
	for _, ch := range d.channels {
		if strings.EqualFold(strings.TrimSpace(ch.Title), title) {
			return ch, true
		}
	}
	for _, ch := range d.channels {
		if slug != "" && ch.Slug == slug {
			return ch, true
		}
	}
	return domain.ChannelRef{}, false
}

// ManagedTargets lists every known category plus the given custom channel names
func ManagedTargets(custom []string) []domain.Destination {
	targets := make([]domain.Destination, 0, len(domain.KnownCategories)+len(custom))
	for _, c := range domain.KnownCategories {
		targets = append(targets, domain.CategoryDestination(c))
	}
	for _, name := range custom {
		if name = strings.TrimSpace(name); name != "" {
			targets = append(targets, domain.ParseDestination(name))
		}
	}
	return targets
}
