package domain

// BlockClass is the content type of an Are.na block
type BlockClass string

const (
	BlockImage      BlockClass = "Image"
	BlockText       BlockClass = "Text"
	BlockLink       BlockClass = "Link"
	BlockMedia      BlockClass = "Media"
	BlockAttachment BlockClass = "Attachment"
)

// Block is a saved item as returned by the content API
type Block struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Content     string       `json:"content,omitempty"` // body for text blocks
	Class       BlockClass   `json:"class"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Source      *BlockSource `json:"source,omitempty"`
	Connections []ChannelRef `json:"connections,omitempty"` // channels the block is known to live in
}

// BlockSource carries link metadata for a block
type BlockSource struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// SourceURL returns the primary source URL or an empty string
func (b Block) SourceURL() string {
	if b.Source == nil {
		return ""
	}
	return b.Source.URL
}

// SourceTitle returns the link metadata title or an empty string
func (b Block) SourceTitle() string {
	if b.Source == nil {
		return ""
	}
	return b.Source.Title
}

// ChannelRef identifies a channel by id, title and slug
type ChannelRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Channel is a collection of blocks
type Channel struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Status string `json:"status,omitempty"`
	Length int    `json:"length"`
}

// Ref returns the channel's reference form
func (c Channel) Ref() ChannelRef {
	return ChannelRef{ID: c.ID, Title: c.Title, Slug: c.Slug}
}

// PageMetadata is what a page fetch could tell about a link
type PageMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}
