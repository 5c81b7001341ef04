package service

import (
	"context"
	"strings"
	"time"

	"github.com/timmy/tagglr/internal/domain"
	"github.com/timmy/tagglr/internal/logger"
	"github.com/timmy/tagglr/internal/tumblr"
)

// RunService drives the end-to-end tagging pipeline: verify models,
// fetch posts, flatten, synthesize, gate, write back. Posts are
// processed strictly one at a time; the pacing between them is part of
// the contract with the remote APIs, not an implementation accident.
type RunService struct {
	verifier  *ModelVerifier
	posts     *tumblr.Client
	flattener *Flattener
	tags      *TagService
	logger    *logger.Logger
	opts      *RunOptions
}

// RunOptions holds the per-invocation switches.
type RunOptions struct {
	DryRun    bool
	Force     bool
	PostURL   string        // non-empty selects single-post mode
	Quota     int           // listing-mode post budget
	PostDelay time.Duration // pacing between posts in listing mode
}

// RunStats holds statistics for one run.
type RunStats struct {
	TotalPosts   int
	TaggedPosts  int
	PlannedPosts int // dry-run posts that would have been tagged
	SkippedPosts int
	FailedPosts  int
	StartTime    time.Time
	EndTime      time.Time
}

// NewRunService creates a new run service.
func NewRunService(
	verifier *ModelVerifier,
	posts *tumblr.Client,
	flattener *Flattener,
	tags *TagService,
	log *logger.Logger,
	opts *RunOptions,
) *RunService {
	return &RunService{
		verifier:  verifier,
		posts:     posts,
		flattener: flattener,
		tags:      tags,
		logger:    log,
		opts:      opts,
	}
}

// log returns a logger from context if available, otherwise returns the service logger
func (s *RunService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Run executes one tagging run.
// Returns:
//   - *RunStats: counts for the completed run.
//   - error: non-nil if model verification or post selection fails.
func (s *RunService) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{StartTime: time.Now()}

	if err := s.verifier.Verify(ctx); err != nil {
		return nil, err
	}

	listing := s.opts.PostURL == ""
	var posts []domain.BlogPost
	if listing {
		var err error
		posts, err = s.posts.ListPosts(ctx, s.opts.Quota, s.opts.Force)
		if err != nil {
			return nil, err
		}
	} else {
		post, err := s.posts.GetPost(ctx, s.opts.PostURL, s.opts.Force)
		if err != nil {
			return nil, err
		}
		if post != nil {
			posts = append(posts, *post)
		}
	}

	stats.TotalPosts = len(posts)
	s.log(ctx).WithFields(logger.Fields{
		logger.FieldCount: len(posts),
		"dry_run":         s.opts.DryRun,
		"force":           s.opts.Force,
	}).Info("Posts selected for classification")

	for i := range posts {
		if ctx.Err() != nil {
			break
		}
		s.processPost(ctx, &posts[i], stats)

		if listing && i < len(posts)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(s.opts.PostDelay):
			}
		}
	}

	stats.EndTime = time.Now()
	s.log(ctx).WithFields(logger.Fields{
		"total":    stats.TotalPosts,
		"tagged":   stats.TaggedPosts,
		"planned":  stats.PlannedPosts,
		"skipped":  stats.SkippedPosts,
		"failed":   stats.FailedPosts,
		"duration": stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Run completed")

	return stats, nil
}

// processPost classifies one post and conditionally writes its tags.
// Every failure mode here skips the post and moves on.
func (s *RunService) processPost(ctx context.Context, post *domain.BlogPost, stats *RunStats) {
	log := s.log(ctx).WithFields(logger.Fields{
		logger.FieldPostID:  post.ID,
		logger.FieldPostURL: post.PostURL,
	})

	payload, images := s.flattener.Flatten(ctx, post)
	if payload == "" {
		log.Info("Post has no classifiable content, skipping")
		stats.SkippedPosts++
		return
	}

	tags := s.tags.Synthesize(ctx, payload)
	if len(tags) == 0 {
		log.Warn("No tags synthesized, skipping")
		stats.SkippedPosts++
		return
	}

	if s.opts.DryRun {
		log.WithFields(logger.Fields{
			"tags":   strings.Join(tags, ", "),
			"images": len(images),
		}).Info("Dry run, would update post tags")
		stats.PlannedPosts++
		return
	}

	tags = append(tags, domain.IndicatorTag)
	if err := s.posts.UpdateTags(ctx, post, tags); err != nil {
		log.WithError(err).Error("Failed to update post tags")
		stats.FailedPosts++
		return
	}

	log.WithFields(logger.Fields{
		"tags":   strings.Join(tags, ", "),
		"images": len(images),
	}).Info("Updated post tags")
	stats.TaggedPosts++
}
