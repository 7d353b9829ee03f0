package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"imagehound/internal/dedup"
	"imagehound/internal/models"
	"imagehound/internal/services"
	"imagehound/internal/shared"
)

// Inserter is the persistence surface the controller writes through.
type Inserter interface {
	Insert(record *models.ImageRecord) error
}

// Deduper classifies candidates against the store and the in-memory set.
type Deduper interface {
	IsStoreDuplicate(username, comment string) (bool, error)
	IsMemoryDuplicate(tags []string, comment string) bool
	Remember(tags []string, comment string)
}

// StopReason describes why a run ended.
type StopReason string

const (
	// StopDuplicateStreak is the normal termination: the configured number
	// of consecutive duplicate-class skips was reached.
	StopDuplicateStreak StopReason = "duplicate streak"
	// StopCancelled means the run context was cancelled (operator interrupt).
	StopCancelled StopReason = "cancelled"
	// StopFatal means an unrecoverable error ended the run.
	StopFatal StopReason = "fatal error"
)

// Summary reports the final counters of a run. It is returned on every
// exit path, including cancellation, so counts can always be logged.
type Summary struct {
	Processed int
	Skipped   int
	Pages     int
	Elapsed   time.Duration
	Reason    StopReason
}

// phase is the controller's loop state.
type phase int

const (
	phaseFetching phase = iota
	phaseProcessing
	phasePaused
)

// itemOutcome classifies the result of one item's trip through the pipeline.
type itemOutcome int

const (
	outcomeInserted  itemOutcome = iota
	outcomeSkipped               // suppressed or extraction-failed, not duplicate-classified
	outcomeDuplicate             // rejected by a dedup gate; counts toward the streak
	outcomeFailed                // unexpected per-item error; logged and skipped
	outcomeFatal                 // unrecoverable; aborts the run
)

// HarvesterOpts contains the dependencies and configuration for a Harvester.
type HarvesterOpts struct {
	Config   shared.HarvestConfig
	Lister   services.Lister
	Comments services.CommentFetcher
	Tags     services.TagExtractor
	Store    Inserter
	Dedup    Deduper
	Logger   *log.Logger
	Now      func() time.Time
}

// Harvester drives the ingestion cycle and owns all session state.
type Harvester struct {
	cfg      shared.HarvestConfig
	lister   services.Lister
	comments services.CommentFetcher
	tags     services.TagExtractor
	store    Inserter
	dedup    Deduper
	logger   *log.Logger
	limiter  *rate.Limiter
	now      func() time.Time

	processed       int
	skipped         int
	duplicateStreak int
	recentUsers     map[string]time.Time
	processedIDs    map[int64]struct{}
	history         []*models.ImageRecord
}

// NewHarvester creates a Harvester with the provided dependencies.
func NewHarvester(opts HarvesterOpts) *Harvester {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	// One token per refresh interval: waiting on the limiter at the end of
	// a cycle sleeps exactly the remainder, floored at zero.
	interval := opts.Config.RefreshInterval()
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Harvester{
		cfg:          opts.Config,
		lister:       opts.Lister,
		comments:     opts.Comments,
		tags:         opts.Tags,
		store:        opts.Store,
		dedup:        opts.Dedup,
		logger:       opts.Logger,
		limiter:      rate.NewLimiter(limit, 1),
		now:          opts.Now,
		recentUsers:  make(map[string]time.Time),
		processedIDs: make(map[int64]struct{}),
	}
}

// Run executes the ingestion loop until the duplicate-streak limit is
// reached, the context is cancelled, or a fatal error occurs. The summary
// is valid on every return.
func (h *Harvester) Run(ctx context.Context) (Summary, error) {
	start := h.now()
	page := 1
	pages := 0
	state := phaseFetching
	var items []models.ListingItem

	summary := func(reason StopReason) Summary {
		return Summary{
			Processed: h.processed,
			Skipped:   h.skipped,
			Pages:     pages,
			Elapsed:   h.now().Sub(start),
			Reason:    reason,
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return summary(StopCancelled), err
		}

		switch state {
		case phaseFetching:
			fetched, err := h.lister.FetchPage(ctx, page)
			pages++
			if err != nil {
				h.logger.Error("failed to fetch listing page", "page", page, "error", err)
			}
			if len(fetched) == 0 {
				if err == nil {
					h.logger.Info("no new images on current page, moving to next", "page", page)
				}
				page++
				if werr := h.limiter.Wait(ctx); werr != nil {
					return summary(StopCancelled), werr
				}
				continue
			}
			items = fetched
			state = phaseProcessing

		case phaseProcessing:
			next, reason, err := h.processPage(ctx, items)
			if reason != "" || err != nil {
				if reason == "" {
					reason = StopCancelled
				}
				return summary(reason), err
			}
			if next == phasePaused {
				state = phasePaused
				continue
			}
			page++
			if werr := h.limiter.Wait(ctx); werr != nil {
				return summary(StopCancelled), werr
			}
			state = phaseFetching

		case phasePaused:
			h.logger.Info("processing threshold reached, pausing before restart",
				"processed", h.processed, "pause", h.cfg.PauseDuration())
			if err := h.sleep(ctx, h.cfg.PauseDuration()); err != nil {
				return summary(StopCancelled), err
			}
			h.processed = 0
			h.skipped = 0
			page = 1
			state = phaseFetching
		}
	}
}

// processPage runs every item on the page through the pipeline, checking
// the quota and streak conditions after each item. A non-empty StopReason
// ends the run.
func (h *Harvester) processPage(ctx context.Context, items []models.ListingItem) (phase, StopReason, error) {
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return 0, StopCancelled, err
		}

		outcome, err := h.processItem(ctx, item)
		switch outcome {
		case outcomeFatal:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return 0, StopCancelled, err
			}
			h.logger.Error("unrecoverable error, ending run", "id", int64(item.ID), "error", err)
			return 0, StopFatal, err
		case outcomeFailed:
			h.logger.Error("error processing image", "id", int64(item.ID), "error", err)
		}

		if h.processed >= h.cfg.ProcessThreshold {
			return phasePaused, "", nil
		}

		if h.duplicateStreak >= h.cfg.DuplicateStreakLimit {
			h.logger.Info("consecutive duplicate entries found, terminating",
				"streak", h.duplicateStreak)
			return 0, StopDuplicateStreak, nil
		}
	}

	return phaseFetching, "", nil
}

// processItem runs one item through pre-filters, extraction, and the dedup
// gates, updating session counters itself. Returned errors accompany the
// outcomeFailed and outcomeFatal outcomes only.
func (h *Harvester) processItem(ctx context.Context, item models.ListingItem) (itemOutcome, error) {
	id := int64(item.ID)

	if last, ok := h.recentUsers[item.Username]; ok && h.now().Sub(last) < h.cfg.TimeThreshold() {
		h.skipped++
		h.logger.Info("skipping image: recent post from user", "id", id, "username", item.Username)
		return outcomeSkipped, nil
	}

	if _, ok := h.processedIDs[id]; ok {
		h.skipped++
		h.logger.Info("skipping image: already processed", "id", id)
		return outcomeSkipped, nil
	}

	comment, found, err := h.comments.FetchComment(ctx, item)
	if err != nil {
		return outcomeFailed, err
	}
	if !found {
		h.logger.Info("skipping image: no embedded user comment", "id", id)
		return outcomeSkipped, nil
	}

	tags, err := h.tags.ExtractTags(ctx, item.WebURL)
	if err != nil {
		// Extraction errors mean the rendering session could not be
		// restored (or the run was cancelled); neither is per-item.
		return outcomeFatal, err
	}
	if len(tags) == 0 {
		h.logger.Info("skipping image: no tags found", "id", id)
		return outcomeSkipped, nil
	}

	record, derr := models.NewImageRecord(item, tags, comment)
	if derr != nil {
		h.logger.Warn("failed to parse creation date", "id", id, "error", derr)
	}

	storeDup, err := h.dedup.IsStoreDuplicate(record.Username, record.UserComment)
	if err != nil {
		// Fail open: a transient store error never blocks the pipeline.
		h.logger.Error("duplicate check failed, treating as new", "id", id, "error", err)
	}
	if storeDup {
		h.skipped++
		h.duplicateStreak++
		h.logger.Info("skipping image: duplicate entry found", "id", id)
		return outcomeDuplicate, nil
	}

	if h.dedup.IsMemoryDuplicate(record.Tags, record.UserComment) {
		h.skipped++
		h.duplicateStreak++
		h.logger.Info("skipping image: similar entry found", "id", id)
		return outcomeDuplicate, nil
	}

	if err := h.store.Insert(record); err != nil {
		// Fail silent: the item is lost but counters stay untouched.
		h.logger.Error("failed to insert record", "id", id, "error", err)
		return outcomeSkipped, nil
	}

	if dedup.SimilarToRecent(record.UserComment, h.history, h.cfg.SimilarityThreshold) {
		h.logger.Debug("accepted record closely resembles recent history", "id", id)
	}

	h.dedup.Remember(record.Tags, record.UserComment)
	h.recentUsers[record.Username] = h.now()
	h.appendHistory(record)
	h.processedIDs[id] = struct{}{}
	h.processed++
	h.duplicateStreak = 0

	h.logger.Info("processed image", "id", id, "processed", h.processed, "skipped", h.skipped)
	return outcomeInserted, nil
}

// appendHistory adds the record to the bounded history buffer, evicting
// the oldest entry once capacity is reached.
func (h *Harvester) appendHistory(record *models.ImageRecord) {
	if h.cfg.HistorySize <= 0 {
		return
	}

	h.history = append(h.history, record)
	if len(h.history) > h.cfg.HistorySize {
		h.history = h.history[1:]
	}
}

func (h *Harvester) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
