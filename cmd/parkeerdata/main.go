// parkeerdata prepares the data served by parkeermap: it merges per-source
// facility dumps into the unified snapshot, splits the snapshot into
// per-province files, and prints dataset statistics.
package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/robbertj85/parkeerplaatsen/internal/dataset"
	"github.com/robbertj85/parkeerplaatsen/internal/ingest"
	"github.com/robbertj85/parkeerplaatsen/internal/model"
)

func main() {
	root := &cobra.Command{
		Use:          "parkeerdata",
		Short:        "Prepare the Dutch parking facility dataset",
		SilenceUsage: true,
	}
	root.AddCommand(mergeCmd(), splitCmd(), statsCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func mergeCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "merge <source.json>...",
		Short: "Merge source dumps into one deduplicated snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var all []model.Facility
			for _, path := range args {
				snap, err := readSnapshot(path)
				if err != nil {
					return err
				}
				fmt.Printf("  %s: %d facilities\n", path, len(snap.Features))
				all = append(all, snap.Features...)
			}

			ingest.Normalize(all)
			before := len(all)
			merged := ingest.Dedupe(all)
			fmt.Printf("merged %d facilities into %d (%d duplicates)\n",
				before, len(merged), before-len(merged))

			snap := model.Snapshot{
				Metadata: model.Metadata{
					Generated: time.Now().UTC().Format(time.RFC3339),
					Stats:     dataset.ComputeStats(merged),
				},
				Features: merged,
			}
			return writeSnapshot(out, snap)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "parking_nl.json", "output snapshot path (.gz for gzip)")
	return cmd
}

func splitCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "split <snapshot.json>",
		Short: "Split a snapshot into pre-gzipped per-province files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			buckets := ingest.SplitByProvince(snap.Features)
			if err := ingest.WriteProvinceFiles(out, buckets); err != nil {
				return err
			}
			for name, feats := range buckets {
				fmt.Printf("  %s: %d facilities\n", name, len(feats))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "data/provinces", "output directory")
	return cmd
}

func statsCmd() *cobra.Command {
	var municipalities bool
	cmd := &cobra.Command{
		Use:   "stats <snapshot.json>",
		Short: "Print dataset statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if municipalities {
				return enc.Encode(ingest.ComputeMunicipalityStats(snap.Features))
			}
			return enc.Encode(dataset.ComputeStats(snap.Features))
		},
	}
	cmd.Flags().BoolVar(&municipalities, "municipalities", false, "aggregate per municipality")
	return cmd
}

func readSnapshot(path string) (model.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var dec *json.Decoder
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer func() { _ = zr.Close() }()
		dec = json.NewDecoder(zr)
	} else {
		dec = json.NewDecoder(f)
	}

	var snap model.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return snap, nil
}

func writeSnapshot(path string, snap model.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if strings.HasSuffix(path, ".gz") {
		zw := gzip.NewWriter(f)
		if err := json.NewEncoder(zw).Encode(snap); err != nil {
			_ = zw.Close()
			return fmt.Errorf("encode %s: %w", path, err)
		}
		return zw.Close()
	}
	return json.NewEncoder(f).Encode(snap)
}
