package domain

import (
	"encoding/json"
	"strings"
)

// IndicatorTag marks posts whose tags were written by this tool.
// Its presence in a post's existing tags makes the post invisible to
// later runs unless force is set.
const IndicatorTag = "ai generated tags"

// BlockKind discriminates the content block variants relevant to
// classification. Values include BlockText, BlockImage, and BlockOther.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
	BlockOther
)

// ImageVariant is one rendition of an image block at a given pixel size.
type ImageVariant struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ContentBlock is a single NPF content block. The wire format carries a
// string "type" discriminant; only text and image blocks carry data the
// classifier cares about, everything else decodes to BlockOther.
type ContentBlock struct {
	Kind  BlockKind
	Text  string
	Media []ImageVariant
}

// UnmarshalJSON decodes a raw NPF block into the closed variant set.
// Parameters:
//   - data: raw JSON for one content block.
//
// Returns:
//   - error: non-nil if the JSON is malformed.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string         `json:"type"`
		Text  string         `json:"text"`
		Media []ImageVariant `json:"media"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case "text":
		b.Kind = BlockText
		b.Text = raw.Text
	case "image":
		b.Kind = BlockImage
		b.Media = raw.Media
	default:
		b.Kind = BlockOther
	}
	return nil
}

// TrailEntry is one ancestor in a post's reblog trail, carrying the
// content blocks that ancestor contributed.
type TrailEntry struct {
	Content []ContentBlock `json:"content"`
}

// BlogPost is a post as fetched from the blog API. It is never mutated
// locally; the only write is the remote tag update.
type BlogPost struct {
	ID       int64          `json:"id"`
	BlogName string         `json:"blog_name"`
	PostURL  string         `json:"post_url"`
	Content  []ContentBlock `json:"content"`
	Trail    []TrailEntry   `json:"trail"`
	Tags     []string       `json:"tags"`
}

// HasTag reports whether the post already carries the given tag,
// ignoring case.
func (p *BlogPost) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
