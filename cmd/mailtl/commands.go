package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/mailtl"
	"github.com/ZaguanLabs/mailtl/cache"
	"github.com/ZaguanLabs/mailtl/internal/textutil"
	"github.com/ZaguanLabs/mailtl/walker"
)

const previewWidth = 60

func (a *app) newScanCommand() *cobra.Command {
	var (
		showAll bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "List the text that would be sent for translation",
		Long: `Scan parses every template under root and lists the text nodes that still
contain English, split into the segments that would be translated and the
placeholders and links that would be kept. No provider is called and no
file is written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closer, err := a.setup(cmd, args)
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := cfg.ValidateScan(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			t := newTranslator(cfg, nil, nil, log)
			scans, err := walker.New(t, walker.WithLogger(log)).Scan(cmd.Context(), cfg.Root)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeScanJSON(a.stdout, scans, showAll)
			}
			writeScan(a.stdout, scans, showAll)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAll, "all", false, "Also list nodes that are skipped, with the reason")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func writeScan(w io.Writer, scans []walker.FileScan, showAll bool) {
	files, pending := 0, 0
	for _, scan := range scans {
		if scan.Err != nil {
			fmt.Fprintf(w, "%s: %v\n\n", scan.Path, scan.Err)
			continue
		}
		n := scan.Pending()
		if n == 0 && !showAll {
			continue
		}
		files++
		pending += n

		fmt.Fprintf(w, "%s (%d to translate)\n", scan.Path, n)
		for i, node := range scan.Nodes {
			res := scan.Results[i]
			if res.Skip != mailtl.SkipNone {
				if showAll {
					fmt.Fprintf(w, "  - %-8s %q (%s)\n", node.ID, preview(res.Original), res.Skip)
				}
				continue
			}

			fmt.Fprintf(w, "  * %-8s %q\n", node.ID, preview(res.Original))
			if node.Context != "" {
				fmt.Fprintf(w, "             %s\n", node.Context)
			}
			for _, seg := range res.Segments {
				mark := "keep"
				if seg.Translate {
					mark = "send"
				}
				fmt.Fprintf(w, "      %s %q\n", mark, textutil.Truncate(seg.Text, previewWidth))
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d of %d files have text to translate (%d nodes)\n", files, len(scans), pending)
}

func preview(s string) string {
	return textutil.Truncate(textutil.OneLine(s), previewWidth)
}

type scanJSON struct {
	Path  string     `json:"path"`
	Error string     `json:"error,omitempty"`
	Nodes []nodeJSON `json:"nodes"`
}

type nodeJSON struct {
	ID       string        `json:"id"`
	Context  string        `json:"context,omitempty"`
	Text     string        `json:"text"`
	Skip     string        `json:"skip,omitempty"`
	Segments []segmentJSON `json:"segments,omitempty"`
}

type segmentJSON struct {
	Text      string `json:"text"`
	Translate bool   `json:"translate"`
}

func writeScanJSON(w io.Writer, scans []walker.FileScan, showAll bool) error {
	out := make([]scanJSON, 0, len(scans))
	for _, scan := range scans {
		file := scanJSON{Path: scan.Path, Nodes: []nodeJSON{}}
		if scan.Err != nil {
			file.Error = scan.Err.Error()
		}
		for i, node := range scan.Nodes {
			res := scan.Results[i]
			if res.Skip != mailtl.SkipNone && !showAll {
				continue
			}
			n := nodeJSON{
				ID:      node.ID,
				Context: node.Context,
				Text:    res.Original,
				Skip:    string(res.Skip),
			}
			for _, seg := range res.Segments {
				n.Segments = append(n.Segments, segmentJSON{Text: seg.Text, Translate: seg.Translate})
			}
			file.Nodes = append(file.Nodes, n)
		}
		out = append(out, file)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func printSummary(w io.Writer, s *walker.Summary, dryRun bool, elapsed time.Duration) {
	if dryRun {
		for _, f := range s.Files {
			if !f.Changed {
				continue
			}
			fmt.Fprintf(w, "%s\n", f.Path)
			for _, c := range f.Diff.Changes {
				fmt.Fprintf(w, "  %q\n  -> %q\n", preview(c.Original), preview(c.Translated))
			}
		}
		fmt.Fprintf(w, "\nDry run: %d of %d files would change\n", s.Changed, s.Scanned)
	}

	fmt.Fprintf(w, "\nDone in %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Files scanned:  %d\n", s.Scanned)
	fmt.Fprintf(w, "  Files changed:  %d\n", s.Changed)
	fmt.Fprintf(w, "  Files written:  %d\n", s.Written)
	fmt.Fprintf(w, "  Files failed:   %d\n", s.Errors)
	fmt.Fprintf(w, "  Nodes found:    %d\n", s.Nodes)
	fmt.Fprintf(w, "  Translated:     %d\n", s.Translated)
	fmt.Fprintf(w, "  From cache:     %d\n", s.Cached)
	fmt.Fprintf(w, "  Not translated: %d\n", s.Failed)

	for _, f := range s.FailedFiles() {
		fmt.Fprintf(w, "  ! %s: %v\n", f.Path, f.Err)
	}
}

func (a *app) newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Move cached translations in and out of the cache backend",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "export <file>",
			Short: "Write all cached translations to a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, closer, err := a.setup(cmd, nil)
				if err != nil {
					return err
				}
				defer closer.Close()

				if err := cfg.ValidateCache(); err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}

				ctx := cmd.Context()
				store, err := openCache(ctx, cfg, log)
				if err != nil {
					return err
				}
				defer store.Close()
				if store.cache == nil {
					return fmt.Errorf("cache backend is %q, nothing to export", cfg.Cache.Backend)
				}

				n, err := cache.NewExporter(store.cache).ExportToFile(ctx, args[0], cacheMetadata(cfg))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Exported %d entries to %s\n", n, args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Load translations from a JSON file into the cache",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, closer, err := a.setup(cmd, nil)
				if err != nil {
					return err
				}
				defer closer.Close()

				if err := cfg.ValidateCache(); err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}

				ctx := cmd.Context()
				store, err := openCache(ctx, cfg, log)
				if err != nil {
					return err
				}
				defer store.Close()
				if store.cache == nil {
					return fmt.Errorf("cache backend is %q, nothing to import into", cfg.Cache.Backend)
				}

				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				res, err := cache.NewImporter(store.cache).Import(ctx, f)
				if err != nil {
					return fmt.Errorf("importing %s: %w", args[0], err)
				}
				if err := store.save(ctx, cfg); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Imported %d entries from %s (%d failed)\n", res.Imported, args[0], res.Failed)
				return nil
			},
		},
	)

	return cmd
}
