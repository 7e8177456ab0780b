package walker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/mailtl"
	"github.com/ZaguanLabs/mailtl/processor"
	"github.com/ZaguanLabs/mailtl/provider"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWalker(p mailtl.Provider, opts ...Option) *Walker {
	t := mailtl.NewTranslator("th", p,
		mailtl.WithProcessor(processor.NewHTMLProcessor()),
		mailtl.WithLogger(quietLogger()),
	)
	return New(t, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func newMock() *provider.MockProvider {
	mock := provider.NewMockProvider()
	mock.Translations[", visit"] = ", เยี่ยมชม"
	return mock
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWalk_EndToEnd(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "welcome.html")
	write(t, path, `<html><body><p>Welcome #USER#, visit https://example.com now</p></body></html>`)

	summary, err := newTestWalker(newMock()).Walk(context.Background(), root)
	require.NoError(t, err)

	got := read(t, path)
	assert.Contains(t, got, "<p>ยินดีต้อนรับ #USER#, เยี่ยมชม https://example.com ตอนนี้</p>")
	assert.NotContains(t, got, "Welcome")

	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, 3, summary.Translated)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Diff.Changes, 1)
	assert.Equal(t, "Welcome #USER#, visit https://example.com now", summary.Diff.Changes[0].Original)
}

func TestWalk_Recursive(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.html"), "<p>Hello</p>")
	write(t, filepath.Join(root, "nested", "deep", "b.html"), "<p>Thank you</p>")
	write(t, filepath.Join(root, "notes.txt"), "Hello")
	write(t, filepath.Join(root, "upper.HTML"), "<p>Hello</p>")

	summary, err := newTestWalker(newMock()).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Scanned)
	assert.Contains(t, read(t, filepath.Join(root, "nested", "deep", "b.html")), "ขอบคุณ")
	assert.Equal(t, "Hello", read(t, filepath.Join(root, "notes.txt")))
	assert.Equal(t, "<p>Hello</p>", read(t, filepath.Join(root, "upper.HTML")))
}

func TestWalk_PartialTemplate(t *testing.T) {
	root := t.TempDir()
	row := filepath.Join(root, "row.html")
	write(t, row, "<tr><td>Hello #NAME#</td></tr>\n")
	header := filepath.Join(root, "header.html")
	headerContent := "<html><head><title>Hello</title></head></html>\n"
	write(t, header, headerContent)

	summary, err := newTestWalker(newMock()).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "<tr><td>สวัสดี #NAME#</td></tr>\n", read(t, row))
	assert.Equal(t, headerContent, read(t, header))
	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Written)
}

func TestWalk_UnchangedFileNotRewritten(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "thai.html")
	content := "<html><body><p>สวัสดี #NAME#</p><p>#ONLY_TOKEN#</p></body></html>"
	write(t, path, content)

	past := mustStat(t, path).ModTime().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	mock := newMock()
	summary, err := newTestWalker(mock).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, content, read(t, path))
	assert.True(t, mustStat(t, path).ModTime().Equal(past), "file should not be touched")
	assert.Equal(t, 0, summary.Changed)
	assert.Equal(t, 0, summary.Written)
	assert.Equal(t, 0, mock.Calls())
}

func TestWalk_FailedTranslationNotRewritten(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.html")
	write(t, path, "<p>Hello #NAME#!</p>")

	mock := newMock()
	mock.Err = &mailtl.ProviderError{Message: "quota exceeded"}

	summary, err := newTestWalker(mock).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "<p>Hello #NAME#!</p>", read(t, path))
	assert.Equal(t, 0, summary.Changed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Errors)
}

func TestWalk_DryRun(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.html")
	write(t, path, "<p>Hello</p>")

	summary, err := newTestWalker(newMock(), WithDryRun(true)).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "<p>Hello</p>", read(t, path))
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 0, summary.Written)
	require.Len(t, summary.Files, 1)
	require.Len(t, summary.Files[0].Diff.Changes, 1)
	assert.Equal(t, "สวัสดี", summary.Files[0].Diff.Changes[0].Translated)
}

func TestWalk_PreservesFileMode(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.html")
	write(t, path, "<p>Hello</p>")
	require.NoError(t, os.Chmod(path, 0o600))

	_, err := newTestWalker(newMock()).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, os.FileMode(0o600), mustStat(t, path).Mode().Perm())
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should be left behind")
}

func TestWalk_InvalidUTF8Dropped(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.html")
	write(t, path, "<p>Hel\xfflo</p>")

	_, err := newTestWalker(newMock()).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Contains(t, read(t, path), "สวัสดี")
}

func TestWalk_UnreadableFileDoesNotStopWalk(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced")
	}

	root := t.TempDir()
	bad := filepath.Join(root, "a.html")
	good := filepath.Join(root, "b.html")
	write(t, bad, "<p>Hello</p>")
	write(t, good, "<p>Hello</p>")
	require.NoError(t, os.Chmod(bad, 0o000))
	t.Cleanup(func() { _ = os.Chmod(bad, 0o644) })

	summary, err := newTestWalker(newMock()).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Errors)
	assert.Contains(t, read(t, good), "สวัสดี")

	failed := summary.FailedFiles()
	require.Len(t, failed, 1)
	var fileErr *mailtl.FileError
	require.True(t, errors.As(failed[0].Err, &fileErr))
	assert.Equal(t, "read", fileErr.Op)
	assert.Equal(t, bad, fileErr.Path)
}

func TestWalk_RootErrors(t *testing.T) {
	w := newTestWalker(newMock())

	_, err := w.Walk(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	file := filepath.Join(t.TempDir(), "a.html")
	write(t, file, "<p>Hello</p>")
	_, err = w.Walk(context.Background(), file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestWalk_Cancelled(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.html")
	write(t, path, "<p>Hello</p>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestWalker(newMock()).Walk(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Scanned)
	assert.Equal(t, "<p>Hello</p>", read(t, path))
}

func TestWithExtension(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.htm"), "<p>Hello</p>")
	write(t, filepath.Join(root, "b.html"), "<p>Hello</p>")

	paths, err := newTestWalker(newMock(), WithExtension(".htm")).Find(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.htm")}, paths)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.html")
	content := "<p>Dear #NAME#,</p><p>#ONLY_TOKEN#</p><p>ขอบคุณ</p>"
	write(t, path, content)

	mock := newMock()
	scans, err := newTestWalker(mock).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, scans, 1)

	scan := scans[0]
	require.NoError(t, scan.Err)
	require.Len(t, scan.Nodes, 3)
	assert.Equal(t, 1, scan.Pending())
	assert.Equal(t, []mailtl.Segment{
		{Text: "Dear ", Translate: true},
		{Text: "#NAME#"},
		{Text: ",", Translate: true},
	}, scan.Results[0].Segments)
	assert.Equal(t, mailtl.SkipPureToken, scan.Results[1].Skip)
	assert.Equal(t, mailtl.SkipNotCandidate, scan.Results[2].Skip)

	assert.Equal(t, 0, mock.Calls())
	assert.Equal(t, content, read(t, path))
}

func mustStat(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}
