package dropfolder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

func newTestSource(dir string) domain.Source {
	return domain.Source{
		ID:                "inbox",
		Name:              "Inbox",
		Kind:              domain.KindDropFolder,
		BaseURL:           dir,
		AllowedExtensions: []string{"pdf", "eml"},
	}
}

func drain(t *testing.T, refs <-chan domain.CandidateRef, errs <-chan error) ([]domain.CandidateRef, error) {
	t.Helper()
	var out []domain.CandidateRef
	timeout := time.After(5 * time.Second)
	for refs != nil || errs != nil {
		select {
		case ref, ok := <-refs:
			if !ok {
				refs = nil
				continue
			}
			out = append(out, ref)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return out, err
		case <-timeout:
			t.Fatal("timed out draining adapter channels")
		}
	}
	return out, nil
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	return path
}

func TestDiscoverWalksFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "report.pdf")
	writeFile(t, dir, "nested/memo.eml")
	writeFile(t, dir, "notes.txt")     // extension not allowed
	writeFile(t, dir, ".hidden.pdf")   // dotfile
	writeFile(t, dir, ".git/blob.pdf") // dot directory

	adapter := New(newTestSource(dir), false)
	defer adapter.Close()

	refs, errs := adapter.Discover(context.Background(), "")
	got, err := drain(t, refs, errs)

	_, ok := driven.IsDiscoverComplete(err)
	require.True(t, ok, "expected completion, got %v", err)

	require.Len(t, got, 2)
	byRef := map[string]domain.CandidateRef{}
	for _, ref := range got {
		byRef[ref.Ref] = ref
	}
	require.Contains(t, byRef, "report.pdf")
	require.Contains(t, byRef, "nested/memo.eml")
	assert.Equal(t, "report", byRef["report.pdf"].Title)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), byRef["report.pdf"].URL)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	adapter := New(newTestSource(dir), false)
	assert.NoError(t, adapter.Validate(context.Background()))

	missing := New(newTestSource(filepath.Join(dir, "nope")), false)
	assert.ErrorIs(t, missing.Validate(context.Background()), domain.ErrInvalidInput)

	file := writeFile(t, dir, "file.pdf")
	notDir := New(newTestSource(file), false)
	assert.ErrorIs(t, notDir.Validate(context.Background()), domain.ErrInvalidInput)
}

func TestDiscoverWatchPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "existing.pdf")

	adapter := New(newTestSource(dir), true)
	defer adapter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refs, errs := adapter.Discover(ctx, "")

	first := <-refs
	assert.Equal(t, "existing.pdf", first.Ref)

	// give the watcher a beat to attach before creating the file
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "late.pdf")

	select {
	case ref := <-refs:
		assert.Equal(t, "late.pdf", ref.Ref)
	case <-time.After(5 * time.Second):
		t.Fatal("watched file never surfaced")
	}

	cancel()
	drain(t, refs, errs)
}

func TestCapabilities(t *testing.T) {
	adapter := New(newTestSource(t.TempDir()), false)
	caps := adapter.Capabilities()
	assert.True(t, caps.SupportsWatch)
	assert.False(t, caps.RequiresNetwork)
	assert.Equal(t, domain.KindDropFolder, adapter.Kind())
}
