// Package dataset loads the parking snapshot and keeps an immutable
// in-memory handle for the lifetime of the process.
package dataset

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/robbertj85/parkeerplaatsen/internal/index"
	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

// Handle wraps a loaded snapshot. The facility collection is never mutated
// after Load returns; readers share it without locking.
type Handle struct {
	snap     model.Snapshot
	version  string
	idx      *index.Index
	loadedAt time.Time
}

// Empty returns a handle over zero facilities, used when the initial load
// fails so the rest of the service keeps functioning.
func Empty() *Handle {
	idx, _ := index.New(nil)
	return &Handle{
		snap:     model.Snapshot{Metadata: model.Metadata{Stats: ComputeStats(nil)}},
		version:  "empty",
		idx:      idx,
		loadedAt: time.Now(),
	}
}

// Load reads the snapshot from a local path or an http(s) URL. Gzipped
// payloads are detected by magic bytes. Missing facility types default to
// "other" and the stats summary is recomputed when the envelope carries
// none.
func Load(ctx context.Context, source string, client *http.Client) (*Handle, error) {
	raw, err := read(ctx, source, client)
	if err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", source, err)
	}

	for i := range snap.Features {
		snap.Features[i].Type = snap.Features[i].Type.OrOther()
	}
	if snap.Metadata.Stats.Total == 0 && len(snap.Features) > 0 {
		snap.Metadata.Stats = ComputeStats(snap.Features)
	}

	idx, err := index.New(snap.Features)
	if err != nil {
		return nil, fmt.Errorf("build viewport index: %w", err)
	}

	return &Handle{
		snap:     snap,
		version:  fmt.Sprintf("%016x", xxhash.Sum64(raw)),
		idx:      idx,
		loadedAt: time.Now(),
	}, nil
}

func read(ctx context.Context, source string, client *http.Client) ([]byte, error) {
	var rc io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch snapshot %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("fetch snapshot %s: status %d", source, resp.StatusCode)
		}
		rc = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		rc = f
	}
	defer func() { _ = rc.Close() }()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", source, err)
	}
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip snapshot %s: %w", source, err)
		}
		defer func() { _ = zr.Close() }()
		if raw, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("gunzip snapshot %s: %w", source, err)
		}
	}
	return raw, nil
}

func (h *Handle) Facilities() []model.Facility { return h.snap.Features }
func (h *Handle) Stats() model.Stats           { return h.snap.Metadata.Stats }
func (h *Handle) Version() string              { return h.version }
func (h *Handle) Index() *index.Index          { return h.idx }
func (h *Handle) LoadedAt() time.Time          { return h.loadedAt }

// Ready reports whether a non-empty snapshot is being served.
func (h *Handle) Ready() bool {
	return h != nil && len(h.snap.Features) > 0
}

// ComputeStats derives the metadata summary from the facility collection.
func ComputeStats(facilities []model.Facility) model.Stats {
	s := model.Stats{
		Total:    len(facilities),
		ByType:   map[string]int{},
		BySource: map[string]int{},
	}
	for i := range facilities {
		f := &facilities[i]
		s.ByType[string(f.Type.OrOther())]++
		if f.Source != "" {
			s.BySource[f.Source]++
		}
		if f.HasRealtime {
			s.WithRealtime++
		}
	}
	return s
}
