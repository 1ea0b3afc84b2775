// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/contriborg/contribsync/internal/domain"
	"github.com/contriborg/contribsync/internal/gateway"
)

// Store is the persistence target for the final snapshot.
type Store interface {
	Put(ctx context.Context, snapshot domain.Snapshot) error
}

// Refresher is the use case for rebuilding the contribution calendar.
// It orchestrates quota checking, fetching, normalization, classification
// and persistence.
type Refresher struct {
	fetcher gateway.Fetcher
	store   Store
	org     string
	logger  *logrus.Logger
	now     func() time.Time
}

// NewRefresher creates a new Refresher instance.
func NewRefresher(fetcher gateway.Fetcher, store Store, org string, logger *logrus.Logger) *Refresher {
	return &Refresher{
		fetcher: fetcher,
		store:   store,
		org:     org,
		logger:  logger,
		now:     time.Now,
	}
}

// Refresh performs one full aggregation run. The outcome is binary: on
// any error nothing is persisted and the previous snapshot stays
// authoritative.
func (r *Refresher) Refresh(ctx context.Context) error {
	window := domain.NewWindow(r.now())
	r.logger.WithFields(logrus.Fields{
		"org":  r.org,
		"from": window.Start.Format(domain.DateLayout),
		"to":   window.End.Format(domain.DateLayout),
	}).Info("starting contribution refresh")

	limit, err := r.fetcher.RateLimit(ctx)
	if err != nil {
		return err
	}
	if limit.Remaining == 0 {
		return &domain.QuotaExceededError{ResetAt: limit.ResetAt}
	}

	repos, err := r.fetcher.ListRepositories(ctx, r.org)
	if err != nil {
		return err
	}
	r.logger.WithField("repositories", len(repos)).Info("enumerated repositories")

	calendar := domain.NewCalendar(window)

	// Repositories are processed one at a time; the fan-out is only
	// across the three event collections of a single repository. The
	// calendar is touched only after all three fetches have resolved.
	for _, repo := range repos {
		var commits, pulls, issues []domain.Event

		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			var err error
			commits, err = r.fetcher.ListCommits(egCtx, r.org, repo, window.Start)
			return err
		})
		eg.Go(func() error {
			var err error
			pulls, err = r.fetcher.ListPullRequests(egCtx, r.org, repo, window.Start)
			return err
		})
		eg.Go(func() error {
			var err error
			issues, err = r.fetcher.ListIssues(egCtx, r.org, repo, window.Start)
			return err
		})
		if err := eg.Wait(); err != nil {
			return err
		}

		for _, ev := range commits {
			calendar.Record(ev)
		}
		for _, ev := range pulls {
			calendar.Record(ev)
		}
		for _, ev := range issues {
			calendar.Record(ev)
		}

		r.logger.WithFields(logrus.Fields{
			"repo":          repo,
			"commits":       len(commits),
			"pull_requests": len(pulls),
			"issues":        len(issues),
		}).Debug("repository aggregated")
	}

	snapshot := domain.Snapshot{
		Contributions: calendar.Days(),
		LastUpdated:   r.now().Unix(),
	}
	if err := r.store.Put(ctx, snapshot); err != nil {
		return err
	}

	r.logger.WithField("max_per_day", calendar.Max()).Info("contribution refresh complete")
	return nil
}
