package filer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golift.io/triggerr/filer"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var (
		def      = filer.Default()
		dir      = t.TempDir()
		testFile = filepath.Join(dir, "sub", "mylog.log")
	)

	assert.NoError(def.MkdirAll(filepath.Dir(testFile), 0o750))
	require.NoError(t, os.WriteFile(testFile, []byte("log message\n"), 0o600))

	info, err := def.Stat(testFile)
	assert.NoError(err)
	assert.EqualValues(12, info.Size())
	assert.Equal(info.ModTime(), info.CreateTime, "creation time falls back to mtime")

	entries, err := def.ReadDir(filepath.Dir(testFile))
	assert.NoError(err)
	assert.Len(entries, 1)
	assert.Equal("mylog.log", entries[0].Name())

	newFile := filepath.Join(dir, "sub", "moved.log")
	assert.NoError(def.Rename(testFile, newFile))
	assert.NoError(def.Remove(newFile))

	_, err = def.Stat(newFile)
	assert.Error(err, "the file is gone")
}
