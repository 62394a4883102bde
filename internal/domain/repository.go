package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ArenaClient defines the content API operations the services rely on
type ArenaClient interface {
	ListChannels(ctx context.Context, userSlug string) ([]Channel, error)
	ListChannelContents(ctx context.Context, channelSlug string) ([]Block, error)
	BlockChannels(ctx context.Context, blockID int64) ([]ChannelRef, error)
	CreateChannel(ctx context.Context, title, status string) (*Channel, error)
	Connect(ctx context.Context, channelSlug string, blockID int64) error
	Disconnect(ctx context.Context, channelSlug string, blockID int64) error
	UpdateBlockDescription(ctx context.Context, blockID int64, description string) error
}

// Image is raw image bytes plus their MIME type
type Image struct {
	Data     []byte
	MIMEType string
}

// ModelClient defines the image/text understanding model
type ModelClient interface {
	Generate(ctx context.Context, prompt string, image *Image) (string, error)
	FetchImage(ctx context.Context, imageURL string) (*Image, error)
}

// MetadataFetcher looks up a page's title and description
type MetadataFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*PageMetadata, error)
}

// IndexRepository is the local key-value store for indexed candidates and style guides
type IndexRepository interface {
	ListCollections(ctx context.Context) ([]string, error)
	ListIDs(ctx context.Context, collection string) ([]string, error)
	GetCandidate(ctx context.Context, collection, id string) (*Candidate, error)
	SaveCandidate(ctx context.Context, collection string, candidate *Candidate) error
	LoadCandidates(ctx context.Context, collection string) ([]Candidate, error)
	SaveStyleGuide(ctx context.Context, channel string, guide *AggregatedStyleGuide) error
	GetStyleGuide(ctx context.Context, channel string) (*AggregatedStyleGuide, error)
}
