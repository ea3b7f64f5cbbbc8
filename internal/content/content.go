// Package content serves the country guide blocks shown on the portal
// (application steps, required documents, optional walkthrough video).
package content

import (
	"context"
	"regexp"

	"gorm.io/gorm"

	"github.com/atlasgate/visaport/internal/intake"
	"github.com/atlasgate/visaport/internal/models"
)

// Guide is one locale-projected content block.
type Guide struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	YoutubeID string `json:"youtube_id,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// Service reads portal content.
type Service struct {
	db *gorm.DB
}

// NewService creates a content service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CountryGuides returns the active guides for a country in display
// order, with titles and bodies picked for the locale.
func (s *Service) CountryGuides(ctx context.Context, country, locale string) ([]Guide, error) {
	var rows []models.PortalContent
	err := s.db.WithContext(ctx).
		Where("country = ? AND is_active = ?", country, true).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	guides := make([]Guide, 0, len(rows))
	for _, row := range rows {
		guides = append(guides, Guide{
			ID:        row.ID,
			Title:     intake.PickLabel(locale, row.Title, row.TitleTR),
			Body:      intake.PickLabel(locale, row.Body, row.BodyTR),
			YoutubeID: ExtractYoutubeID(row.YoutubeURL),
			SortOrder: row.SortOrder,
		})
	}
	return guides, nil
}

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
}

// ExtractYoutubeID pulls the 11-character video id out of any of the
// usual YouTube URL shapes. Unrecognized URLs yield "".
func ExtractYoutubeID(url string) string {
	for _, pattern := range youtubePatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
