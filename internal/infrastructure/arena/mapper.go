package arena

import "github.com/tastelens/backend/internal/domain"

type apiImageVersion struct {
	URL string `json:"url"`
}

type apiImage struct {
	Display  apiImageVersion `json:"display"`
	Large    apiImageVersion `json:"large"`
	Original apiImageVersion `json:"original"`
}

type apiProvider struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type apiSource struct {
	URL      string       `json:"url"`
	Title    string       `json:"title"`
	Provider *apiProvider `json:"provider"`
}

type apiBlock struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Class       string     `json:"class"`
	BaseClass   string     `json:"base_class"`
	Image       *apiImage  `json:"image"`
	Source      *apiSource `json:"source"`
}

type apiChannel struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Length int    `json:"length"`
}

type channelsPage struct {
	Channels []apiChannel `json:"channels"`
}

type contentsPage struct {
	Contents []apiBlock `json:"contents"`
}

// MapToBlock converts an API block into the domain model.
// Nested channels inside a channel's contents are not blocks and are dropped by callers.
func MapToBlock(b apiBlock) domain.Block {
	block := domain.Block{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Content:     b.Content,
		Class:       domain.BlockClass(b.Class),
		ImageURL:    imageURL(b.Image),
	}

	if b.Source != nil && b.Source.URL != "" {
		block.Source = &domain.BlockSource{
			URL:   b.Source.URL,
			Title: b.Source.Title,
		}
		if b.Source.Provider != nil {
			block.Source.Provider = b.Source.Provider.Name
		}
	}

	return block
}

// MapToChannel converts an API channel into the domain model
func MapToChannel(c apiChannel) domain.Channel {
	return domain.Channel{
		ID:     c.ID,
		Title:  c.Title,
		Slug:   c.Slug,
		Status: c.Status,
		Length: c.Length,
	}
}

// imageURL prefers the display rendition, which is sized for model input
func imageURL(img *apiImage) string {
	if img == nil {
		return ""
	}
	for _, u := range []string{img.Display.URL, img.Large.URL, img.Original.URL} {
		if u != "" {
			return u
		}
	}
	return ""
}
