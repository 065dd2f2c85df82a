package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/testutil"
)

func TestListDirFilesOnly(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "file.txt"), []byte("hello"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	names, err := ListDir(dir, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"file.txt"}, names)

	names, err = ListDir(dir, false, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"file.txt", "sub"}, names)
}

func TestListDirMetadata(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "b:colon.txt"), []byte("12345"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a-dir"), 0o755))

	entries, err := ListDir(dir, false, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"D _ 0:a-dir", "F _ 5:b:colon.txt"}, entries)

	parsed, err := ParseDirEntry(entries[1])
	require.NoError(t, err)
	assert.Equal(t, DirEntry{Name: "b:colon.txt", Kind: KindFile, Size: 5}, parsed)
}

func TestListDirSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "target.txt"), []byte("abc"))
	require.NoError(t, os.Symlink("target.txt", filepath.Join(dir, "link")))
	require.NoError(t, os.Symlink("nowhere", filepath.Join(dir, "dangling")))

	entries, err := ReadDir(dir, false)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := map[string]DirEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Equal(t, DirEntry{Name: "link", Kind: KindFile, Symlink: true, Size: 3}, byName["link"])
	assert.Equal(t, DirEntry{Name: "dangling", Kind: KindOther, Symlink: true}, byName["dangling"])

	// Unresolvable entries are skipped when only files are wanted.
	files, err := ListDir(dir, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"link", "target.txt"}, files)
}

func TestListDirFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := ListDir(filepath.Join(dir, "missing"), false, false)
	assert.ErrorIs(t, err, fserr.ErrNotFound)

	file := filepath.Join(dir, "plain")
	testutil.WriteFile(t, file, nil)
	_, err = ListDir(file, false, false)
	assert.ErrorIs(t, err, fserr.ErrNotFound)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestListDirEmpty(t *testing.T) {
	names, err := ListDir(t.TempDir(), false, true)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMakeDirAll(t *testing.T) {
	dir := t.TempDir()
	deep := filepath.Join(dir, "a", "b", "c")

	require.NoError(t, MakeDirAll(deep))
	info, err := os.Stat(deep)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Existing directories are fine.
	require.NoError(t, MakeDirAll(deep))

	assert.ErrorIs(t, MakeDirAll(""), fserr.ErrMalformed)

	blocker := filepath.Join(dir, "blocker")
	testutil.WriteFile(t, blocker, []byte("x"))
	err = MakeDirAll(filepath.Join(blocker, "child"))
	assert.Error(t, err)
}

func TestWalkDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"a/b", "a/c", "skip/deep", "d"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	testutil.WriteFile(t, filepath.Join(root, "a", "file.txt"), nil)

	dirs, err := WalkDirs(context.Background(), root, func(p string) bool {
		return filepath.Base(p) == "skip"
	})
	require.NoError(t, err)

	var rel []string
	for _, d := range dirs {
		r, err := filepath.Rel(root, d)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	sort.Strings(rel)
	assert.Equal(t, []string{".", "a", "a/b", "a/c", "d"}, rel)
	for _, r := range rel {
		assert.False(t, strings.HasPrefix(r, "skip"))
	}
}

func TestWalkDirsCancelled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "x", "y"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WalkDirs(ctx, root, nil)
	assert.Error(t, err)
}
