package service

import (
	"context"
	"strings"

	"github.com/timmy/tagglr/internal/domain"
)

// preferredWidths is the set of rendition widths eligible for description.
// A block whose candidates include none of these contributes nothing.
var preferredWidths = map[int]bool{
	640: true,
	540: true,
	500: true,
	400: true,
	220: true,
	100: true,
}

// ImageDescriber produces a one-line description for an image URL. An
// empty string means description failed; the flattener still emits the
// description line so the block keeps its position in the payload.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, imageURL string) string
}

// Flattener turns a post's nested content into the single ordered text
// payload handed to the tag synthesizer.
type Flattener struct {
	describer ImageDescriber
}

// NewFlattener creates a new flattener.
func NewFlattener(describer ImageDescriber) *Flattener {
	return &Flattener{describer: describer}
}

// Flatten builds the classification payload for a post: every trail
// entry's blocks in trail order, then the post's own blocks, block order
// preserved throughout. The model sees ancestry before the post's own
// content, so this ordering is load-bearing.
// Returns the payload and the image URLs that were described, for
// diagnostics.
func (f *Flattener) Flatten(ctx context.Context, post *domain.BlogPost) (string, []string) {
	blocks := make([]domain.ContentBlock, 0, len(post.Content))
	for _, entry := range post.Trail {
		blocks = append(blocks, entry.Content...)
	}
	blocks = append(blocks, post.Content...)

	var sb strings.Builder
	var described []string
	for _, block := range blocks {
		switch block.Kind {
		case domain.BlockText:
			sb.WriteString(block.Text)
			sb.WriteString("\n\n")
		case domain.BlockImage:
			variant, ok := selectVariant(block.Media)
			if !ok {
				continue
			}
			described = append(described, variant.URL)
			description := f.describer.DescribeImage(ctx, variant.URL)
			sb.WriteString("Image description: ")
			sb.WriteString(description)
			sb.WriteString("\n\n")
		}
	}

	return strings.TrimSpace(sb.String()), described
}

// selectVariant picks the first candidate, in the block's own order,
// whose width is one of the preferred widths.
func selectVariant(media []domain.ImageVariant) (domain.ImageVariant, bool) {
	for _, m := range media {
		if preferredWidths[m.Width] {
			return m, true
		}
	}
	return domain.ImageVariant{}, false
}
