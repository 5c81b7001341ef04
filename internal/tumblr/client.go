package tumblr

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/tagglr/internal/domain"
	"github.com/timmy/tagglr/internal/logger"
)

// Config holds connection settings for the blog API.
type Config struct {
	Blog        string
	APIBase     string
	APIKey      string
	AccessToken string
	PageDelay   time.Duration // courtesy delay between listing page fetches
}

// Client talks to the blog REST API: post listing, single-post fetch, and
// the legacy tag edit endpoint.
type Client struct {
	client *resty.Client
	cfg    *Config
	logger *logger.Logger
}

// New creates a new blog API client.
// Parameters:
//   - cfg: connection settings including credentials.
//   - log: structured logger.
//
// Returns:
//   - *Client: initialized API client.
func New(cfg *Config, log *logger.Logger) *Client {
	client := resty.New()
	client.SetTimeout(120 * time.Second)
	client.SetTransport(&http.Transport{
		DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
	})

	return &Client{
		client: client,
		cfg:    cfg,
		logger: log.WithField(logger.FieldComponent, "tumblr"),
	}
}

// postsEnvelope is the JSON envelope returned by the posts endpoint.
type postsEnvelope struct {
	Response struct {
		Posts []domain.BlogPost `json:"posts"`
		Links struct {
			Next struct {
				Href string `json:"href"`
			} `json:"next"`
		} `json:"_links"`
	} `json:"response"`
}

// GetPost fetches a single post by its public URL and applies the
// idempotency filter. A post that is missing, unfetchable, or already
// carries the indicator tag (unless force) yields nil without error;
// only an unparseable URL is reported as an error.
func (c *Client) GetPost(ctx context.Context, postURL string, force bool) (*domain.BlogPost, error) {
	blog, id, err := ParsePostURL(postURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse post URL: %w", err)
	}

	var env postsEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key": c.cfg.APIKey,
			"npf":     "true",
			"id":      strconv.FormatInt(id, 10),
		}).
		SetResult(&env).
		Get(c.cfg.APIBase + "/v2/blog/" + blog + "/posts")
	if err != nil {
		c.logger.WithField(logger.FieldPostURL, postURL).WithError(err).Error("Failed to fetch post")
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.WithFields(logger.Fields{
			logger.FieldPostURL: postURL,
			logger.FieldStatus:  resp.StatusCode(),
			"body":              string(resp.Body()),
		}).Error("Post fetch returned non-200 status")
		return nil, nil
	}
	if len(env.Response.Posts) == 0 {
		c.logger.WithField(logger.FieldPostURL, postURL).Warn("Post not found")
		return nil, nil
	}

	post := env.Response.Posts[0]
	if !force && post.HasTag(domain.IndicatorTag) {
		c.logger.WithField(logger.FieldPostURL, postURL).Info("Post already tagged, skipping")
		return nil, nil
	}

	return &post, nil
}

// ListPosts walks the blog's listing newest-first and returns up to quota
// posts that pass the idempotency filter. Pagination follows the
// response's next-page link iteratively; filtered-out posts never count
// toward the quota and no page beyond the one that fills it is fetched.
func (c *Client) ListPosts(ctx context.Context, quota int, force bool) ([]domain.BlogPost, error) {
	accepted := make([]domain.BlogPost, 0, quota)
	if quota <= 0 {
		return accepted, nil
	}

	nextHref := ""
	firstParams := map[string]string{
		"api_key": c.cfg.APIKey,
		"npf":     "true",
		"before":  strconv.FormatInt(time.Now().Unix(), 10),
	}
	pages := 0

	for len(accepted) < quota {
		if ctx.Err() != nil {
			return accepted, ctx.Err()
		}

		req := c.client.R().SetContext(ctx)
		var url string
		if nextHref == "" {
			req.SetQueryParams(firstParams)
			url = c.cfg.APIBase + "/v2/blog/" + c.cfg.Blog + "/posts"
		} else {
			// The next link carries its own paging params but not the key.
			req.SetQueryParam("api_key", c.cfg.APIKey)
			url = c.cfg.APIBase + nextHref
		}

		var env postsEnvelope
		resp, err := req.SetResult(&env).Get(url)
		if err != nil {
			c.logger.WithError(err).Error("Failed to fetch post listing")
			return accepted, nil
		}
		if resp.StatusCode() != http.StatusOK {
			c.logger.WithFields(logger.Fields{
				logger.FieldStatus: resp.StatusCode(),
				"body":             string(resp.Body()),
			}).Error("Post listing returned non-200 status")
			return accepted, nil
		}
		pages++

		for _, post := range env.Response.Posts {
			if !force && post.HasTag(domain.IndicatorTag) {
				c.logger.WithField(logger.FieldPostURL, post.PostURL).Debug("Post already tagged, skipping")
				continue
			}
			accepted = append(accepted, post)
			if len(accepted) == quota {
				break
			}
		}

		nextHref = env.Response.Links.Next.Href
		if nextHref == "" || len(accepted) == quota {
			break
		}

		// Stay polite to the remote API between pages.
		select {
		case <-ctx.Done():
			return accepted, ctx.Err()
		case <-time.After(c.cfg.PageDelay):
		}
	}

	c.logger.WithFields(logger.Fields{
		logger.FieldCount: len(accepted),
		"pages":           pages,
	}).Info("Post listing collected")

	return accepted, nil
}

// UpdateTags writes a new tag set to a post via the legacy edit endpoint.
// The endpoint takes the tag list as one comma-joined string, not a JSON
// array.
func (c *Client) UpdateTags(ctx context.Context, post *domain.BlogPost, tags []string) error {
	tagString := strings.Join(tags, ",")

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.cfg.AccessToken).
		SetFormData(map[string]string{
			"id":   strconv.FormatInt(post.ID, 10),
			"tags": tagString,
		}).
		Post(c.cfg.APIBase + "/v2/blog/" + post.BlogName + "/post/edit")
	if err != nil {
		return fmt.Errorf("failed to call edit endpoint: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("edit endpoint returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}
