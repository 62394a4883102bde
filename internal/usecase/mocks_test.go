package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tastelens/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string]interface{}
	getError  error
	setError  error
	getCalled int
	setCalled int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalled++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockArenaClient is a mock implementation of domain.ArenaClient
type MockArenaClient struct {
	mu sync.Mutex

	channels     []domain.Channel
	contents     map[string][]domain.Block
	connections  map[int64][]domain.ChannelRef
	contentsErr  error
	blockErr     map[int64]error
	connectErr   error
	disconnected []string
	connected    []string
	labels       map[int64]string
	created      []string
	nextID       int64
}

func NewMockArenaClient() *MockArenaClient {
	return &MockArenaClient{
		contents:    make(map[string][]domain.Block),
		connections: make(map[int64][]domain.ChannelRef),
		blockErr:    make(map[int64]error),
		labels:      make(map[int64]string),
		nextID:      1000,
	}
}

func (m *MockArenaClient) ListChannels(ctx context.Context, userSlug string) ([]domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Channel(nil), m.channels...), nil
}

func (m *MockArenaClient) ListChannelContents(ctx context.Context, channelSlug string) ([]domain.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.contentsErr != nil {
		return nil, m.contentsErr
	}
	blocks, ok := m.contents[channelSlug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.Block(nil), blocks...), nil
}

func (m *MockArenaClient) BlockChannels(ctx context.Context, blockID int64) ([]domain.ChannelRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.blockErr[blockID]; err != nil {
		return nil, err
	}
	return append([]domain.ChannelRef{}, m.connections[blockID]...), nil
}

func (m *MockArenaClient) CreateChannel(ctx context.Context, title, status string) (*domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ch := domain.Channel{ID: m.nextID, Title: title, Slug: domain.Slugify(title) + "-abc", Status: status}
	m.channels = append(m.channels, ch)
	m.created = append(m.created, title)
	return &ch, nil
}

func (m *MockArenaClient) Connect(ctx context.Context, channelSlug string, blockID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = append(m.connected, fmt.Sprintf("%s/%d", channelSlug, blockID))
	return nil
}

func (m *MockArenaClient) Disconnect(ctx context.Context, channelSlug string, blockID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnected = append(m.disconnected, fmt.Sprintf("%s/%d", channelSlug, blockID))
	return nil
}

func (m *MockArenaClient) UpdateBlockDescription(ctx context.Context, blockID int64, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[blockID] = description
	return nil
}

// MockModelClient is a mock implementation of domain.ModelClient.
// Images are "fetched" as their URL bytes; responses are keyed by those bytes.
type MockModelClient struct {
	mu             sync.Mutex
	responses      map[string]string
	generateErr    map[string]error
	fetchErr       map[string]error
	generateCalled int
}

func NewMockModelClient() *MockModelClient {
	return &MockModelClient{
		responses:   make(map[string]string),
		generateErr: make(map[string]error),
		fetchErr:    make(map[string]error),
	}
}

func (m *MockModelClient) Generate(ctx context.Context, prompt string, image *domain.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalled++
	if image == nil {
		return "", errors.New("no image")
	}
	key := string(image.Data)
	if err := m.generateErr[key]; err != nil {
		return "", err
	}
	resp, ok := m.responses[key]
	if !ok {
		return "", fmt.Errorf("%w: no canned response for %s", domain.ErrModelFailure, key)
	}
	return resp, nil
}

func (m *MockModelClient) FetchImage(ctx context.Context, imageURL string) (*domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fetchErr[imageURL]; err != nil {
		return nil, err
	}
	return &domain.Image{Data: []byte(imageURL), MIMEType: "image/png"}, nil
}

// MockIndexRepository is an in-memory domain.IndexRepository
type MockIndexRepository struct {
	mu      sync.Mutex
	order   map[string][]string
	items   map[string]domain.Candidate
	guides  map[string]domain.AggregatedStyleGuide
	saveErr error
}

func NewMockIndexRepository() *MockIndexRepository {
	return &MockIndexRepository{
		order:  make(map[string][]string),
		items:  make(map[string]domain.Candidate),
		guides: make(map[string]domain.AggregatedStyleGuide),
	}
}

func (m *MockIndexRepository) ListCollections(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for c := range m.order {
		out = append(out, c)
	}
	return out, nil
}

func (m *MockIndexRepository) ListIDs(ctx context.Context, collection string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order[collection]...), nil
}

func (m *MockIndexRepository) GetCandidate(ctx context.Context, collection, id string) (*domain.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[collection+"/"+id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *MockIndexRepository) SaveCandidate(ctx context.Context, collection string, candidate *domain.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	key := collection + "/" + candidate.ID
	if _, exists := m.items[key]; !exists {
		m.order[collection] = append(m.order[collection], candidate.ID)
	}
	m.items[key] = *candidate
	return nil
}

func (m *MockIndexRepository) LoadCandidates(ctx context.Context, collection string) ([]domain.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Candidate
	for _, id := range m.order[collection] {
		out = append(out, m.items[collection+"/"+id])
	}
	return out, nil
}

func (m *MockIndexRepository) SaveStyleGuide(ctx context.Context, channel string, guide *domain.AggregatedStyleGuide) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guides[channel] = *guide
	return nil
}

func (m *MockIndexRepository) GetStyleGuide(ctx context.Context, channel string) (*domain.AggregatedStyleGuide, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guides[channel]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

// MockMetadataFetcher is a mock implementation of domain.MetadataFetcher
type MockMetadataFetcher struct {
	pages  map[string]domain.PageMetadata
	called int
}

func (m *MockMetadataFetcher) Fetch(ctx context.Context, pageURL string) (*domain.PageMetadata, error) {
	m.called++
	meta, ok := m.pages[pageURL]
	if !ok {
		return nil, errors.New("page unavailable")
	}
	return &meta, nil
}

// mockRecorder counts what the services report
type mockRecorder struct {
	mu      sync.Mutex
	batch   map[string]int
	matches int
	triage  []string
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{batch: make(map[string]int)}
}

func (r *mockRecorder) RecordBatchItem(job, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batch[job+":"+outcome]++
}

func (r *mockRecorder) RecordMatch(err error, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches++
}

func (r *mockRecorder) RecordTriage(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triage = append(r.triage, action)
}

func tagJSON(component, vibe string) string {
	return fmt.Sprintf(`Here you go: {"component": [%s], "vibe": [%s], "description": "a screen"}`,
		quoteList(component), quoteList(vibe))
}

func quoteList(csv string) string {
	if csv == "" {
		return ""
	}
	parts := strings.Split(csv, ",")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, ",")
}
