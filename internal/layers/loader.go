package layers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/robbertj85/parkeerplaatsen/internal/core/observability"
)

// State of one city layer. Failed is terminal: there is no automatic retry,
// the failure is logged and the layer stays unavailable for the session.
type State int

const (
	NotRequested State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "not_requested"
	}
}

var ErrUnknownCity = errors.New("unknown city layer")

type entry struct {
	state State
	doc   []byte
	err   error
	done  chan struct{}
}

// Loader fetches each city's GeoJSON document at most once. Concurrent
// requests for the same city during the first load share the in-flight
// fetch rather than starting a second one.
type Loader struct {
	reg     *Registry
	store   Store
	client  *http.Client
	logger  zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

func NewLoader(reg *Registry, store Store, client *http.Client, logger zerolog.Logger, timeout time.Duration) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{
		reg:     reg,
		store:   store,
		client:  client,
		logger:  logger,
		timeout: timeout,
		entries: map[string]*entry{},
	}
}

// Cities returns the registered cities.
func (l *Loader) Cities() []City { return l.reg.Cities() }

// StateOf reports the lifecycle state of a city layer.
func (l *Loader) StateOf(city string) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[strings.ToLower(strings.TrimSpace(city))]; ok {
		return e.state
	}
	return NotRequested
}

// Get returns the city's document, loading it on first request. Subsequent
// calls return the retained document (or the terminal error) without
// another fetch.
func (l *Loader) Get(ctx context.Context, city string) ([]byte, City, error) {
	c, ok := l.reg.Lookup(city)
	if !ok {
		return nil, City{}, fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}

	l.mu.Lock()
	e, ok := l.entries[c.Key]
	if ok {
		switch e.state {
		case Loaded:
			l.mu.Unlock()
			return e.doc, c, nil
		case Failed:
			l.mu.Unlock()
			return nil, c, e.err
		case Loading:
			done := e.done
			l.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return nil, c, ctx.Err()
			}
			l.mu.Lock()
			defer l.mu.Unlock()
			if e.state == Loaded {
				return e.doc, c, nil
			}
			return nil, c, e.err
		}
	}

	e = &entry{state: Loading, done: make(chan struct{})}
	l.entries[c.Key] = e
	l.mu.Unlock()

	doc, err := l.load(c)

	l.mu.Lock()
	if err != nil {
		e.state = Failed
		e.err = err
		observability.IncLayerLoad(c.Key, "error")
		l.logger.Error().Err(err).Str("city", c.Key).Msg("layer load failed")
	} else {
		e.state = Loaded
		e.doc = doc
		observability.IncLayerLoad(c.Key, "ok")
		l.logger.Info().Str("city", c.Key).Int("bytes", len(doc)).Msg("layer loaded")
	}
	close(e.done)
	l.mu.Unlock()

	if err != nil {
		return nil, c, err
	}
	return doc, c, nil
}

// load consults the shared store first, then fetches and validates the
// document. The load context is detached from any request: a request that
// goes away mid-load does not cancel the fetch, and the result is cached
// regardless.
func (l *Loader) load(c City) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	if doc, ok, err := l.store.Get(ctx, c.Key); err != nil {
		l.logger.Warn().Err(err).Str("city", c.Key).Msg("layer store get failed, fetching")
	} else if ok {
		return doc, nil
	}

	doc, err := l.fetch(ctx, c)
	if err != nil {
		return nil, err
	}
	if _, err := geojson.UnmarshalFeatureCollection(doc); err != nil {
		return nil, fmt.Errorf("city %s: invalid FeatureCollection: %w", c.Key, err)
	}
	if err := l.store.Put(ctx, c.Key, doc); err != nil {
		l.logger.Warn().Err(err).Str("city", c.Key).Msg("layer store put failed")
	}
	return doc, nil
}

func (l *Loader) fetch(ctx context.Context, c City) ([]byte, error) {
	if strings.HasPrefix(c.Source, "http://") || strings.HasPrefix(c.Source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Source, nil)
		if err != nil {
			return nil, fmt.Errorf("city %s: build request: %w", c.Key, err)
		}
		req.Header.Set("Accept", "application/geo+json, application/json")

		start := time.Now()
		resp, err := l.client.Do(req)
		observability.ObserveUpstreamLatency("layer_"+c.Key, time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("city %s: fetch: %w", c.Key, err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("city %s: fetch status %d", c.Key, resp.StatusCode)
		}
		doc, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("city %s: read body: %w", c.Key, err)
		}
		return doc, nil
	}

	doc, err := os.ReadFile(c.Source)
	if err != nil {
		return nil, fmt.Errorf("city %s: read %s: %w", c.Key, c.Source, err)
	}
	return doc, nil
}
