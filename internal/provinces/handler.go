package provinces

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/robbertj85/parkeerplaatsen/internal/core/observability"
)

// Handler serves the pre-gzipped per-province files from dir. Validation is
// layered: whitelist first, then a path-resolution containment check as
// defense in depth. Error bodies are generic and never echo the offending
// input.
func Handler(logger zerolog.Logger, dir string) http.HandlerFunc {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		name := Sanitize(chi.URLParam(r, "name"))
		if name == "" || !Valid(name) {
			http.Error(w, "invalid province", http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/provinces/{name}", http.StatusBadRequest, time.Since(start).Seconds())
			return
		}

		path := filepath.Join(absDir, name+".json.gz")
		resolved, err := filepath.Abs(path)
		if err != nil || !strings.HasPrefix(resolved, absDir+string(filepath.Separator)) {
			http.Error(w, "forbidden", http.StatusForbidden)
			observability.ObserveHTTP(r.Method, "/provinces/{name}", http.StatusForbidden, time.Since(start).Seconds())
			return
		}

		f, err := os.Open(resolved)
		if err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, fs.ErrNotExist) {
				code = http.StatusNotFound
				http.Error(w, "province data not found", code)
			} else {
				logger.Error().Err(err).Str("province", name).Msg("open province file")
				http.Error(w, "internal error", code)
			}
			observability.ObserveHTTP(r.Method, "/provinces/{name}", code, time.Since(start).Seconds())
			return
		}
		defer func() { _ = f.Close() }()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if _, err := io.Copy(w, f); err != nil {
			// headers are already out; nothing to do but log
			logger.Warn().Err(err).Str("province", name).Msg("write province file")
		}
		observability.ObserveHTTP(r.Method, "/provinces/{name}", http.StatusOK, time.Since(start).Seconds())
	}
}
