package walker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ZaguanLabs/mailtl"
)

// FileScan is the analysis of one file: its text nodes and what the
// translator would do with each.
type FileScan struct {
	Path    string
	Nodes   []mailtl.TextNode
	Results []mailtl.NodeResult
	Err     error
}

// Pending returns how many nodes still contain text to translate.
func (f FileScan) Pending() int {
	n := 0
	for _, r := range f.Results {
		if r.Skip == mailtl.SkipNone {
			n++
		}
	}
	return n
}

// Scan analyzes every matching file under root without calling the provider
// or writing anything.
func (w *Walker) Scan(ctx context.Context, root string) ([]FileScan, error) {
	paths, err := w.Find(root)
	if err != nil {
		return nil, err
	}

	scans := make([]FileScan, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return scans, err
		}
		scans = append(scans, w.scanFile(path))
	}
	return scans, nil
}

func (w *Walker) scanFile(path string) FileScan {
	scan := FileScan{Path: path}

	data, err := os.ReadFile(path) // #nosec G304 - paths come from walking the user's template root
	if err != nil {
		scan.Err = &mailtl.FileError{Path: path, Op: "read", Cause: err}
		return scan
	}

	nodes, results, err := w.translator.AnalyzeHTML(strings.ToValidUTF8(string(data), ""))
	if err != nil {
		scan.Err = fmt.Errorf("%s: %w", path, err)
		w.logger.Error("skipping file", "path", path, "error", err)
		return scan
	}

	scan.Nodes = nodes
	scan.Results = results
	return scan
}
