// Package walker runs the translator over every HTML template under a
// directory and writes changed files back in place.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/mailtl"
)

// DefaultExtension selects the files processed by Walk.
const DefaultExtension = ".html"

// Walker processes template files one at a time.
type Walker struct {
	translator *mailtl.Translator
	extension  string
	dryRun     bool
	logger     *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithDryRun translates files but never writes them.
func WithDryRun(dryRun bool) Option {
	return func(w *Walker) {
		w.dryRun = dryRun
	}
}

// WithExtension changes the file extension matched by Walk.
func WithExtension(ext string) Option {
	return func(w *Walker) {
		w.extension = ext
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// New creates a Walker that translates with t.
func New(t *mailtl.Translator, opts ...Option) *Walker {
	w := &Walker{
		translator: t,
		extension:  DefaultExtension,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FileResult is the outcome of processing one file.
type FileResult struct {
	Path       string
	Changed    bool // At least one text node was replaced
	Written    bool // The file was rewritten on disk
	Nodes      int
	Translated int
	Cached     int
	Failed     int
	Diff       *mailtl.Diff
	Err        error
}

// Summary aggregates the results of a walk.
type Summary struct {
	Files      []FileResult
	Scanned    int
	Changed    int
	Written    int
	Errors     int
	Nodes      int
	Translated int
	Cached     int
	Failed     int
	Diff       mailtl.Diff // Node changes of all files, merged
}

func (s *Summary) add(res FileResult) {
	s.Files = append(s.Files, res)
	s.Scanned++
	if res.Err != nil {
		s.Errors++
		return
	}
	if res.Changed {
		s.Changed++
	}
	if res.Written {
		s.Written++
	}
	s.Nodes += res.Nodes
	s.Translated += res.Translated
	s.Cached += res.Cached
	s.Failed += res.Failed
	s.Diff.Merge(res.Diff)
}

// FailedFiles returns the results that ended in an error.
func (s *Summary) FailedFiles() []FileResult {
	var failed []FileResult
	for _, f := range s.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Find returns the paths of all matching files under root, in lexical order.
// Unreadable subdirectories are logged and skipped.
func (w *Walker) Find(root string) ([]string, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), w.extension) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

// Walk processes every matching file under root. Per-file failures are
// recorded in the summary and do not stop the walk; only an unusable root
// or a cancelled context ends it early.
func (w *Walker) Walk(ctx context.Context, root string) (*Summary, error) {
	paths, err := w.Find(root)
	if err != nil {
		return nil, err
	}

	w.logger.Info("found templates", "root", root, "files", len(paths))

	summary := &Summary{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := w.ProcessFile(ctx, path)
		if err != nil {
			w.logger.Error("skipping file", "path", path, "error", err)
		}
		summary.add(*res)
	}

	return summary, nil
}

// ProcessFile translates one file and rewrites it when a node changed. The
// returned FileResult is never nil; its Err mirrors the returned error.
func (w *Walker) ProcessFile(ctx context.Context, path string) (*FileResult, error) {
	res := &FileResult{Path: path}
	fail := func(err error) (*FileResult, error) {
		res.Err = err
		return res, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail(&mailtl.FileError{Path: path, Op: "read", Cause: err})
	}

	data, err := os.ReadFile(path) // #nosec G304 - paths come from walking the user's template root
	if err != nil {
		return fail(&mailtl.FileError{Path: path, Op: "read", Cause: err})
	}

	// Undecodable bytes are dropped, as a lenient reader would.
	content := strings.ToValidUTF8(string(data), "")

	out, err := w.translator.ProcessHTML(ctx, content)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", path, err))
	}

	res.Changed = out.Changed
	res.Nodes = out.TotalNodes
	res.Translated = out.TranslatedCount
	res.Cached = out.CachedCount
	res.Failed = out.FailedCount
	res.Diff = out.Diff

	if !out.Changed {
		w.logger.Debug("no changes", "path", path, "nodes", out.TotalNodes)
		return res, nil
	}

	if w.dryRun {
		w.logger.Info("would overwrite file", "path", path, "changes", len(out.Diff.Changes))
		return res, nil
	}

	if err := writeFileAtomic(path, []byte(out.Content), info.Mode().Perm()); err != nil {
		return fail(&mailtl.FileError{Path: path, Op: "write", Cause: err})
	}
	res.Written = true

	w.logger.Info("overwrote file", "path", path, "changes", len(out.Diff.Changes))
	return res, nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("root directory %s does not exist", root)
	}
	if err != nil {
		return fmt.Errorf("root directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}
	return nil
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory, so a failed write never leaves a truncated template.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
