// Package prooftoken keeps the consumers of an application, as published by
// the IAS proof token API, in memory for the App2Service validation.
package prooftoken

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrInvalidArgument is returned when a Registry is misconfigured.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyStarted is returned by Start on a running Registry.
	ErrAlreadyStarted = errors.New("proof token registry already started")
)

// Fetcher performs GET requests. jwks.HTTPFetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, uri string, headers map[string]string) ([]byte, error)
}

// Registry holds the proof token data of all consumers keyed by consumer
// client id. Each refresh replaces the whole snapshot, readers never lock.
type Registry struct {
	url      string
	fetcher  Fetcher
	interval time.Duration
	clock    clockwork.Clock
	headers  map[string]string
	logger   Logger

	data atomic.Pointer[map[string]Data]

	mu        sync.Mutex
	scheduler gocron.Scheduler
	cancel    context.CancelFunc
}

// NewRegistry creates a Registry reading from url. It holds no data until
// Start or Refresh is called.
func NewRegistry(url string, fetcher Fetcher, opts ...Option) (*Registry, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: proof token url cannot be empty", ErrInvalidArgument)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher cannot be nil", ErrInvalidArgument)
	}

	r := &Registry{
		url:      url,
		fetcher:  fetcher,
		interval: DefaultInterval,
		clock:    clockwork.NewRealClock(),
		headers:  map[string]string{},
		logger:   nopLogger{},
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.data.Store(&map[string]Data{})

	return r, nil
}

// Start loads the data once and then refreshes it every interval until Stop
// is called. A failing initial load is logged, the registry keeps polling.
// ctx bounds the initial load only; later refreshes keep its values but
// run until Stop, even if ctx is cancelled earlier.
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scheduler != nil {
		return ErrAlreadyStarted
	}

	scheduler, err := gocron.NewScheduler(gocron.WithClock(r.clock))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	if _, err = scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() { r.refreshAndLog(pollCtx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule proof token refresh: %w", err)
	}

	r.refreshAndLog(ctx)

	scheduler.Start()
	r.scheduler = scheduler
	r.cancel = cancel

	return nil
}

// Stop ends the periodic refresh. The last snapshot stays available.
func (r *Registry) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scheduler == nil {
		return nil
	}

	r.cancel()
	err := r.scheduler.Shutdown()
	r.scheduler = nil
	r.cancel = nil

	return err
}

// Refresh fetches the data and replaces the snapshot. On failure the
// previous snapshot is kept. It returns the number of consumers loaded.
func (r *Registry) Refresh(ctx context.Context) (int, error) {
	body, err := r.fetcher.Fetch(ctx, r.url, r.headers)
	if err != nil {
		return 0, fmt.Errorf("failed retrieving proof token data from %s: %w", r.url, err)
	}

	var entries []Data
	if err := json.Unmarshal(body, &entries); err != nil {
		return 0, fmt.Errorf("failed to parse proof token data from %s: %w", r.url, err)
	}

	return r.Load(entries), nil
}

func (r *Registry) refreshAndLog(ctx context.Context) {
	count, err := r.Refresh(ctx)
	if err != nil {
		r.logger.Warn("proof token refresh failed", "url", r.url, "error", err)
		return
	}

	r.logger.Info("retrieved proof token entries", "url", r.url, "count", count)
}

// Load replaces the snapshot with entries and returns the number of
// consumers. A later entry wins over an earlier one of the same consumer.
func (r *Registry) Load(entries []Data) int {
	snapshot := make(map[string]Data, len(entries))
	for _, e := range entries {
		if e.ConsumerClientID == "" {
			continue
		}
		snapshot[e.ConsumerClientID] = e
	}

	r.data.Store(&snapshot)

	return len(snapshot)
}

// Lookup returns the data of consumerClientID if cert is registered for it.
func (r *Registry) Lookup(consumerClientID string, cert *x509.Certificate) (Data, bool) {
	d, ok := (*r.data.Load())[consumerClientID]
	if !ok || !d.HasCertificateMapped(cert) {
		return Data{}, false
	}

	return d, true
}

// HasCertificateMapped reports whether cert is registered for
// consumerClientID.
func (r *Registry) HasCertificateMapped(consumerClientID string, cert *x509.Certificate) bool {
	_, ok := r.Lookup(consumerClientID, cert)
	return ok
}

// Len returns the number of consumers in the current snapshot.
func (r *Registry) Len() int {
	return len(*r.data.Load())
}
