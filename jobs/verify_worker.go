// Package jobs runs background verification of cached nutrition facts.
// Facts produced by the AI estimator land in the catalog unverified; the
// worker re-checks them against Open Food Facts and broadcasts the outcome
// to SSE subscribers. Food log entries are never touched: once logged, an
// entry keeps the values it was logged with.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/models"
	"github.com/nutricalc/nutricalc-backend/observability"
	"github.com/nutricalc/nutricalc-backend/store"
)

const (
	queueSize     = 100
	sweepInterval = 10 * time.Minute
	sweepBatch    = 20
	jobTimeout    = 30 * time.Second
)

// VerifyJob asks the worker to re-check one catalog entry.
type VerifyJob struct {
	Query string
}

// CatalogUpdate is sent to SSE subscribers when a fact changes.
type CatalogUpdate struct {
	Query      string  `json:"query"`
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	Carbs      float64 `json:"carbs"`
	Protein    float64 `json:"protein"`
	Fat        float64 `json:"fat"`
	Basis      string  `json:"basis"`
	Provenance string  `json:"provenance"`
	Verified   bool    `json:"verified"`
}

// Reverifier re-checks a fact against the verified nutrition database.
// *nutrition.Client satisfies it.
type Reverifier interface {
	Reverify(ctx context.Context, query, basis string) (models.FoodFact, error)
}

// VerifyWorker processes verification jobs in the background.
type VerifyWorker struct {
	jobs        chan VerifyJob
	catalog     store.Catalog
	lookup      Reverifier
	subscribers map[chan CatalogUpdate]bool
	subMux      sync.RWMutex

	cancel context.CancelFunc
	done   chan struct{}
}

// NewVerifyWorker builds a worker over the given catalog and lookup client.
func NewVerifyWorker(catalog store.Catalog, lookup Reverifier) *VerifyWorker {
	return &VerifyWorker{
		jobs:        make(chan VerifyJob, queueSize),
		catalog:     catalog,
		lookup:      lookup,
		subscribers: make(map[chan CatalogUpdate]bool),
		done:        make(chan struct{}),
	}
}

// Start launches the worker loop and the periodic sweep of unverified facts.
func (w *VerifyWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(ctx)
	logger.Info("Catalog verification worker started")
}

// Stop shuts the worker down and waits for the loop to exit.
func (w *VerifyWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

// Enqueue adds a verification job without blocking. A full queue drops the
// job; the periodic sweep will pick the fact up later.
func (w *VerifyWorker) Enqueue(query string) {
	select {
	case w.jobs <- VerifyJob{Query: query}:
		logger.Debug("Verification job enqueued", "query", query)
	default:
		logger.Warn("Verification queue full, dropping job", "query", query)
	}
}

// Subscribe registers a channel to receive catalog updates.
func (w *VerifyWorker) Subscribe(ch chan CatalogUpdate) {
	w.subMux.Lock()
	defer w.subMux.Unlock()
	w.subscribers[ch] = true
}

// Unsubscribe removes a channel and closes it.
func (w *VerifyWorker) Unsubscribe(ch chan CatalogUpdate) {
	w.subMux.Lock()
	defer w.subMux.Unlock()
	delete(w.subscribers, ch)
	close(ch)
}

func (w *VerifyWorker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.jobs:
			w.processJob(ctx, job)
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep enqueues the oldest unverified facts for another attempt.
func (w *VerifyWorker) sweep(ctx context.Context) {
	facts, err := w.catalog.ListUnverified(ctx, sweepBatch)
	if err != nil {
		logger.Error("Failed to list unverified facts", "error", err)
		return
	}
	for _, fact := range facts {
		w.Enqueue(fact.Query)
	}
}

func (w *VerifyWorker) processJob(ctx context.Context, job VerifyJob) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	fact, err := w.catalog.GetFact(ctx, job.Query)
	if err != nil {
		logger.Error("Failed to load fact for verification", "query", job.Query, "error", err)
		observability.RecordVerification("error")
		return
	}
	if fact == nil || fact.Verified {
		return
	}

	verified, err := w.lookup.Reverify(ctx, fact.Query, fact.Basis)
	if err != nil {
		logger.Debug("Fact still unverified", "query", fact.Query, "error", err)
		observability.RecordVerification("unavailable")
		return
	}

	if err := w.catalog.PutFact(ctx, verified); err != nil {
		logger.Error("Failed to save verified fact", "query", fact.Query, "error", err)
		observability.RecordVerification("error")
		return
	}

	logger.Info("Catalog fact verified", "query", fact.Query, "kcal", verified.Calories)
	observability.RecordVerification("verified")

	w.broadcast(CatalogUpdate{
		Query:      verified.Query,
		Name:       verified.Name,
		Calories:   verified.Calories,
		Carbs:      verified.Carbs,
		Protein:    verified.Protein,
		Fat:        verified.Fat,
		Basis:      verified.Basis,
		Provenance: verified.Provenance,
		Verified:   verified.Verified,
	})
}

func (w *VerifyWorker) broadcast(update CatalogUpdate) {
	w.subMux.RLock()
	defer w.subMux.RUnlock()
	for ch := range w.subscribers {
		select {
		case ch <- update:
		default:
			// Drop update if subscriber is slow
		}
	}
}
