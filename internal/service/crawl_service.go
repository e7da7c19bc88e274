// Package service contains the service layer for the SSQ API
package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/scraper"
	"github.com/nsvirk/ssqapi/pkg/utils/audit"
	"github.com/nsvirk/ssqapi/pkg/utils/state"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
)

var ErrCrawlRunning = errors.New("a crawl is already running")

const (
	crawlLockKey = "LOCK:SSQ:CRAWL"
	crawlLockTTL = 5 * time.Minute

	lastCrawlAtKey        = "SSQ_LAST_CRAWL_AT"
	lastCrawlSourceKey    = "SSQ_LAST_CRAWL_SOURCE"
	lastCrawlSyntheticKey = "SSQ_LAST_CRAWL_SYNTHETIC"
)

// Locker is a cross-process try-lock
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// Runner runs a scraper chain
type Runner interface {
	Run(ctx context.Context, limit int) scraper.Outcome
}

// CrawlSummary is returned by a crawl
type CrawlSummary struct {
	scraper.Outcome
	ImportSummary
	Preview []lottery.Play `json:"preview,omitempty"`
}

// CrawlService fetches recent results and stores the real ones
type CrawlService struct {
	runner   Runner
	importer *ImportService
	locker   Locker
	state    *state.State
	audit    *audit.Logger
	limit    int
}

// NewCrawlService creates a CrawlService. locker may be nil.
func NewCrawlService(runner Runner, importer *ImportService, locker Locker, st *state.State, auditLog *audit.Logger, limit int) *CrawlService {
	if limit <= 0 {
		limit = 30
	}
	return &CrawlService{
		runner:   runner,
		importer: importer,
		locker:   locker,
		state:    st,
		audit:    auditLog,
		limit:    limit,
	}
}

// Crawl runs the source chain once. Synthetic results are returned as a
// preview and never stored.
func (s *CrawlService) Crawl(ctx context.Context, actor string) (*CrawlSummary, error) {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, crawlLockKey, crawlLockTTL)
		if err != nil {
			zaplogger.Warn("Crawl lock unavailable, continuing without it", zaplogger.Fields{"error": err.Error()})
		} else if !ok {
			return nil, ErrCrawlRunning
		} else {
			defer release()
		}
	}

	defer zaplogger.TimeTrack(time.Now(), "Crawl")

	outcome := s.runner.Run(ctx, s.limit)
	summary := &CrawlSummary{Outcome: outcome}
	summary.Total = len(outcome.Results)

	if outcome.Synthetic {
		for _, r := range outcome.Results {
			summary.Preview = append(summary.Preview, r.Play())
		}
		summary.Skipped = len(outcome.Results)
		s.audit.Warn(actor, "crawl", map[string]interface{}{
			"source":    outcome.Source,
			"synthetic": true,
			"failures":  outcome.Failures,
		})
	} else {
		imported, err := s.importer.ImportResults(ctx, outcome.Results)
		if err != nil {
			s.audit.Error(actor, "crawl", map[string]interface{}{
				"source": outcome.Source,
				"error":  err.Error(),
			})
			return nil, err
		}
		summary.ImportSummary = *imported
		s.audit.Info(actor, "crawl", map[string]interface{}{
			"source":   outcome.Source,
			"imported": imported.Imported,
			"skipped":  imported.Skipped,
		})
	}

	s.saveState(outcome)
	zaplogger.Info("Crawl finished", zaplogger.Fields{
		"source":    outcome.Source,
		"synthetic": outcome.Synthetic,
		"imported":  summary.Imported,
		"skipped":   summary.Skipped,
	})
	return summary, nil
}

func (s *CrawlService) saveState(outcome scraper.Outcome) {
	if s.state == nil {
		return
	}
	err := s.state.SetMany(map[string]string{
		lastCrawlAtKey:        time.Now().Format(time.RFC3339),
		lastCrawlSourceKey:    outcome.Source,
		lastCrawlSyntheticKey: strconv.FormatBool(outcome.Synthetic),
	})
	if err != nil {
		zaplogger.Warn("Failed to save crawl state", zaplogger.Fields{"error": err.Error()})
	}
}

// CrawlStatus describes the last crawl
type CrawlStatus struct {
	LastCrawlAt string `json:"last_crawl_at"`
	Source      string `json:"source"`
	Synthetic   bool   `json:"synthetic"`
}

// Status returns what the last crawl did
func (s *CrawlService) Status() (*CrawlStatus, error) {
	if s.state == nil {
		return &CrawlStatus{}, nil
	}
	at, err := s.state.Get(lastCrawlAtKey)
	if err != nil {
		return nil, err
	}
	source, err := s.state.Get(lastCrawlSourceKey)
	if err != nil {
		return nil, err
	}
	synthetic, err := s.state.Get(lastCrawlSyntheticKey)
	if err != nil {
		return nil, err
	}
	return &CrawlStatus{LastCrawlAt: at, Source: source, Synthetic: synthetic == "true"}, nil
}
