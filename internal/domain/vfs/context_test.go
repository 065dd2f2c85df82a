package vfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
	fixtures "github.com/GriffinCanCode/trussfs/internal/testutil"
)

func newContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	c := New(opts...)
	t.Cleanup(func() { c.Close() })
	return c
}

func items(t *testing.T, c *Context, h handle.Handle) []string {
	t.Helper()
	n, err := c.ListLen(h)
	require.NoError(t, err)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := c.ListGet(h, i)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func TestVersionNumber(t *testing.T) {
	assert.Equal(t, uint64(4000), VersionNumber())
	assert.Equal(t, "0.4.0", Version())
}

func TestListLifecycle(t *testing.T) {
	c := newContext(t)

	h, err := c.NewList()
	require.NoError(t, err)
	for i, s := range []string{"x", "y", "z"} {
		n, err := c.ListPush(h, s)
		require.NoError(t, err)
		assert.Equal(t, i+1, n)
	}
	assert.Equal(t, []string{"x", "y", "z"}, items(t, c, h))

	_, err = c.ListGet(h, 3)
	assert.ErrorIs(t, err, fserr.ErrNotFound)
	_, err = c.ListGet(h, -1)
	assert.ErrorIs(t, err, fserr.ErrNotFound)

	require.NoError(t, c.FreeList(h))
	assert.False(t, c.IsValid(h))

	_, err = c.ListLen(h)
	assert.ErrorIs(t, err, fserr.ErrInvalidHandle)
	assert.ErrorIs(t, c.FreeList(h), fserr.ErrInvalidHandle)
}

func TestDoubleFreeKeepsOtherHandlesIntact(t *testing.T) {
	c := newContext(t)

	h1, err := c.NewList("one")
	require.NoError(t, err)
	require.NoError(t, c.FreeList(h1))
	require.Error(t, c.FreeList(h1))

	h2, err := c.NewList("two")
	require.NoError(t, err)
	h3, err := c.NewList("three")
	require.NoError(t, err)

	assert.Equal(t, []string{"two"}, items(t, c, h2))
	assert.Equal(t, []string{"three"}, items(t, c, h3))
	assert.False(t, c.IsValid(h1))
}

func TestKindsDoNotAlias(t *testing.T) {
	dir := t.TempDir()
	zipPath := fixtures.WriteZip(t, dir, "s.zip", fixtures.SampleFiles()...)

	c := newContext(t)
	list, err := c.NewList()
	require.NoError(t, err)
	arc, err := c.MountArchive(zipPath)
	require.NoError(t, err)
	w, err := c.Watch(context.Background(), dir, false)
	require.NoError(t, err)

	assert.NotEqual(t, list, arc)
	assert.NotEqual(t, arc, w)

	_, err = c.ListLen(arc)
	assert.ErrorIs(t, err, fserr.ErrInvalidHandle)
	_, err = c.ArchiveList(list)
	assert.ErrorIs(t, err, fserr.ErrInvalidHandle)
	_, err = c.WatchPoll(arc)
	assert.ErrorIs(t, err, fserr.ErrInvalidHandle)
	assert.ErrorIs(t, c.FreeArchive(w), fserr.ErrInvalidHandle)
	assert.True(t, c.IsValid(w))
}

func TestGarbageHandles(t *testing.T) {
	c := newContext(t)
	for _, h := range []handle.Handle{0, 1, 1 << 32, 0xFFFFFFFFFFFFFFFF, 12345678901} {
		assert.False(t, c.IsValid(h))
		_, err := c.ListLen(h)
		assert.Equal(t, fserr.KindInvalidHandle, fserr.KindOf(err))
	}
}

func TestArchiveOperations(t *testing.T) {
	dir := t.TempDir()
	c := newContext(t)

	paths := map[string]string{
		"zip":     fixtures.WriteZip(t, dir, "s.zip", fixtures.SampleFiles()...),
		"tar":     fixtures.WriteTar(t, dir, "s.tar", fixtures.NoCompression, fixtures.SampleFiles()...),
		"tar.gz":  fixtures.WriteTar(t, dir, "s.tgz", fixtures.Gzip, fixtures.SampleFiles()...),
		"tar.zst": fixtures.WriteTar(t, dir, "s.tzst", fixtures.Zstd, fixtures.SampleFiles()...),
	}
	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			h, err := c.MountArchive(path)
			require.NoError(t, err)
			defer c.FreeArchive(h)

			names, err := c.ArchiveList(h)
			require.NoError(t, err)
			assert.Equal(t, []string{"a.txt", "b.bin"}, items(t, c, names))
			require.NoError(t, c.Free(names))

			detailed, err := c.ArchiveListDetailed(h)
			require.NoError(t, err)
			assert.Equal(t, []string{"0 3 F:a.txt", "1 10 F:b.bin"}, items(t, c, detailed))

			size, err := c.ArchiveSizeByName(h, "a.txt")
			require.NoError(t, err)
			assert.Equal(t, uint64(3), size)

			size, err = c.ArchiveSizeByIndex(h, 1)
			require.NoError(t, err)
			assert.Equal(t, uint64(10), size)

			buf := make([]byte, 3)
			n, err := c.ArchiveReadByName(h, "a.txt", buf)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			assert.Equal(t, "abc", string(buf))

			bin := make([]byte, 16)
			n, err = c.ArchiveReadByIndex(h, 1, bin)
			require.NoError(t, err)
			assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, bin[:n])

			short := []byte{7}
			_, err = c.ArchiveReadByName(h, "a.txt", short)
			assert.ErrorIs(t, err, fserr.ErrCapacity)
			assert.Equal(t, []byte{7}, short)

			_, err = c.ArchiveSizeByName(h, "missing")
			assert.ErrorIs(t, err, fserr.ErrNotFound)
			_, err = c.ArchiveSizeByIndex(h, 2)
			assert.ErrorIs(t, err, fserr.ErrNotFound)
			_, err = c.ArchiveReadByIndex(h, -1, buf)
			assert.ErrorIs(t, err, fserr.ErrNotFound)

			data, err := c.ArchiveContent(h, "a.txt")
			require.NoError(t, err)
			assert.Equal(t, "abc", string(data))
		})
	}
}

func TestArchiveGlob(t *testing.T) {
	dir := t.TempDir()
	path := fixtures.WriteZip(t, dir, "g.zip",
		fixtures.File{Name: "src/", Dir: true},
		fixtures.File{Name: "src/main.go", Body: []byte("package main")},
		fixtures.File{Name: "src/util/x.go", Body: []byte("package util")},
		fixtures.File{Name: "README.md", Body: []byte("# hi")},
	)

	c := newContext(t)
	h, err := c.MountArchive(path)
	require.NoError(t, err)

	g, err := c.ArchiveGlob(h, "**/*.go")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main.go", "src/util/x.go"}, items(t, c, g))

	_, err = c.ArchiveGlob(h, "[")
	assert.ErrorIs(t, err, fserr.ErrMalformed)
}

func TestArchiveContentLimit(t *testing.T) {
	dir := t.TempDir()
	path := fixtures.WriteZip(t, dir, "s.zip", fixtures.SampleFiles()...)

	c := newContext(t)
	c.cfg.Server.MaxReadBytes = 5
	h, err := c.MountArchive(path)
	require.NoError(t, err)

	_, err = c.ArchiveContent(h, "b.bin")
	assert.ErrorIs(t, err, fserr.ErrCapacity)
}

func TestMountFailures(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.zip")
	fixtures.WriteFile(t, junk, []byte("definitely not an archive"))

	c := newContext(t)

	h, err := c.MountArchive(filepath.Join(dir, "absent.zip"))
	assert.Equal(t, handle.Invalid, h)
	assert.ErrorIs(t, err, fserr.ErrNotFound)

	h, err = c.MountArchive(junk)
	assert.Equal(t, handle.Invalid, h)
	assert.ErrorIs(t, err, fserr.ErrMalformed)
	assert.Equal(t, 0, c.Handles())
}

func TestListDirAndSplitPath(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteFile(t, filepath.Join(dir, "b.txt"), []byte("hello"))
	fixtures.WriteFile(t, filepath.Join(dir, "a.txt"), nil)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	c := newContext(t)

	h, err := c.ListDir(dir, false, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "sub"}, items(t, c, h))

	h, err = c.ListDir(dir, true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"F _ 0:a.txt", "F _ 5:b.txt"}, items(t, c, h))

	_, err = c.ListDir(filepath.Join(dir, "missing"), false, false)
	assert.ErrorIs(t, err, fserr.ErrNotFound)

	h, err = c.SplitPath("/usr//local/bin/")
	require.NoError(t, err)
	assert.Equal(t, []string{"usr", "local", "bin"}, items(t, c, h))

	h, err = c.SplitPath("")
	require.NoError(t, err)
	n, err := c.ListLen(h)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMakeDirAll(t *testing.T) {
	c := newContext(t)
	target := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, c.MakeDirAll(target))
	require.NoError(t, c.MakeDirAll(target))
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	file := filepath.Join(t.TempDir(), "f")
	fixtures.WriteFile(t, file, nil)
	assert.Error(t, c.MakeDirAll(filepath.Join(file, "child")))
}

func TestDirectories(t *testing.T) {
	c := newContext(t)

	wd, err := c.WorkingDir()
	require.NoError(t, err)
	expected, _ := os.Getwd()
	assert.Equal(t, expected, wd)

	bin, err := c.BinaryDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(bin))
	info, err := os.Stat(bin)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDirsFixedAtCreation(t *testing.T) {
	c := newContext(t)
	wdBefore, err := c.WorkingDir()
	require.NoError(t, err)
	binBefore, err := c.BinaryDir()
	require.NoError(t, err)

	t.Chdir(t.TempDir())

	wd, err := c.WorkingDir()
	require.NoError(t, err)
	assert.Equal(t, wdBefore, wd)
	bin, err := c.BinaryDir()
	require.NoError(t, err)
	assert.Equal(t, binBefore, bin)

	// A context created afterwards sees the new directory.
	now, err := os.Getwd()
	require.NoError(t, err)
	later, err := newContext(t).WorkingDir()
	require.NoError(t, err)
	assert.Equal(t, now, later)
}

func TestReadLineUsesPrompter(t *testing.T) {
	p := new(fixtures.MockPrompter)
	p.On("ReadLine", "name? ").Return("ferris", nil).Once()
	p.On("ReadLine", "again? ").Return("", errors.New("closed")).Once()

	c := newContext(t, WithPrompter(p))

	line, err := c.ReadLine("name? ")
	require.NoError(t, err)
	assert.Equal(t, "ferris", line)

	_, err = c.ReadLine("again? ")
	assert.Error(t, err)
	p.AssertExpectations(t)
}

func TestWatcherLifecycle(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	other, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	c := newContext(t)
	w, err := c.Watch(context.Background(), dir, true)
	require.NoError(t, err)

	target := filepath.Join(dir, "created.txt")
	f, err := os.Create(target)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var got []string
	require.Eventually(t, func() bool {
		h, err := c.WatchPoll(w)
		if err != nil {
			return false
		}
		polled, _ := c.ListItems(h)
		got = append(got, polled...)
		_ = c.Free(h)
		return len(got) > 0
	}, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	h, err := c.WatchPoll(w)
	require.NoError(t, err)
	got = append(got, items(t, c, h)...)
	assert.Equal(t, []string{"ADD:" + target}, got)

	h, err = c.WatchPoll(w)
	require.NoError(t, err)
	assert.Empty(t, items(t, c, h))

	require.NoError(t, c.WatchAugment(context.Background(), w, other, false))
	assert.Error(t, c.WatchAugment(context.Background(), w, filepath.Join(other, "nope"), false))
	assert.ErrorIs(t, c.WatchAugment(context.Background(), 999, other, false), fserr.ErrInvalidHandle)

	watcher, err := c.Watcher(w)
	require.NoError(t, err)
	require.NoError(t, c.FreeWatcher(w))
	select {
	case <-watcher.Done():
	default:
		t.Fatal("free returned before observation stopped")
	}
	_, err = c.WatchPoll(w)
	assert.ErrorIs(t, err, fserr.ErrInvalidHandle)
}

func TestWatchMissingRoot(t *testing.T) {
	c := newContext(t)
	h, err := c.Watch(context.Background(), filepath.Join(t.TempDir(), "gone"), false)
	assert.Equal(t, handle.Invalid, h)
	assert.ErrorIs(t, err, fserr.ErrNotFound)
}

func TestCloseReleasesEverything(t *testing.T) {
	dir := t.TempDir()
	zipPath := fixtures.WriteZip(t, dir, "s.zip", fixtures.SampleFiles()...)

	c := New()
	list, err := c.NewList("a")
	require.NoError(t, err)
	_, err = c.MountArchive(zipPath)
	require.NoError(t, err)
	wh, err := c.Watch(context.Background(), dir, true)
	require.NoError(t, err)
	w, err := c.Watcher(wh)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.False(t, c.IsValid(list))
	assert.Equal(t, 0, c.Handles())
	select {
	case <-w.Done():
	default:
		t.Fatal("watcher still running after Close")
	}

	_, err = c.NewList()
	assert.ErrorIs(t, err, fserr.ErrClosed)
}

func TestConcurrentFreeAndResolve(t *testing.T) {
	c := newContext(t)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				h, err := c.NewList("v")
				if !assert.NoError(t, err) {
					return
				}
				done := make(chan struct{})
				go func() {
					defer close(done)
					_, _ = c.ListGet(h, 0)
				}()
				_ = c.Free(h)
				_ = c.Free(h)
				<-done
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, c.Handles())
}

func TestMetricsObserveHandlesAndOps(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newContext(t, WithRegisterer(reg))
	m := c.Metrics()

	h, err := c.NewList()
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlesLive.WithLabelValues("list")))
	require.NoError(t, c.Free(h))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HandlesLive.WithLabelValues("list")))

	_, err = c.ListDir(filepath.Join(t.TempDir(), "missing"), false, false)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("list_dir", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContextsAlive))
}
