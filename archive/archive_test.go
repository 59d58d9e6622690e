package archive_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"golift.io/triggerr/archive"
	"golift.io/triggerr/filer"
	"golift.io/triggerr/mocks"
)

func TestPost(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	layout := &archive.Layout{PostRotate: func(s1, s2 string) {
		assert.Equal("string1", s1)
		assert.Equal("string2", s2)
	}}
	layout.Post("string1", "string2")

	layout.PostRotate = nil
	layout.Post("string1", "string2")
}

func TestDirs(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	// test archive dir.
	layout := &archive.Layout{ArchiveDir: filepath.Join("/", "var", "log", "archives")}
	dirs, err := layout.Dirs(filepath.Join("/", "var", "log", "service.log"))
	assert.Equal([]string{filepath.Join("/", "var", "log"), filepath.Join("/", "var", "log", "archives")},
		dirs, "the wrong directories were returned")
	assert.NoError(err, "this should not produce an error")
	assert.Equal(filer.Default(), layout.Filer)
	assert.Equal(archive.DefaultJoiner, layout.Joiner)
	assert.Equal(archive.FormatDefault, layout.Format)
}

func TestRotateOne(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &archive.Layout{
		Filer:  mockFiler,
		UseUTC: true,
		Format: archive.FormatNoSecnd,
		Joiner: archive.DefaultJoiner,
	}
	newName := filepath.Join("/", "var", "log", "service"+layout.Joiner+time.Now().UTC().Format(layout.Format)+".log")

	// Basic test representing first rotate (no existing files).
	mockFiler.EXPECT().Rename(filepath.Join("/", "var", "log", "service.log"), newName)
	mockFiler.EXPECT().ReadDir(filepath.Join("/", "var", "log"))
	//
	file, err := layout.Rotate(filepath.Join("/", "var", "log", "service.log"))
	assert.Equal(newName, file)
	assert.NoError(err)
}

// Make fake dir entries to fake delete.
func testFakeEntries(mockCtrl *gomock.Controller, count int) ([]*mocks.MockDirEntry, []os.DirEntry) {
	var (
		fakes   = make([]*mocks.MockDirEntry, count)
		entries = make([]os.DirEntry, count)
	)

	for i := range count {
		fake := mocks.NewMockDirEntry(mockCtrl)
		fakes[i] = fake
		entries[i] = fake
	}

	return fakes, entries
}

func TestRotatePrune(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	fakes, fakeEntries := testFakeEntries(mockCtrl, 10)
	layout := &archive.Layout{
		ArchiveDir: filepath.Join("/", "var", "log", "archives"),
		Filer:      mockFiler,
		UseUTC:     true,
		Format:     archive.FormatNoSecnd,
		Joiner:     archive.DefaultJoiner,
		FileAge:    time.Minute,
		FileCount:  2,
	}
	newName := filepath.Join("/", "var", "log", "archives",
		"service"+layout.Joiner+time.Now().UTC().Format(layout.Format)+".log")

	mockFiler.EXPECT().Rename(filepath.Join("/", "var", "log", "service.log"), newName)
	mockFiler.EXPECT().ReadDir(layout.ArchiveDir).Return(fakeEntries, nil)

	for idx := range fakes {
		// We returned 10 fake entries, so give them 10 fake file names.
		// Each name is 10 seconds older than the previous. Anything older
		// than FileAge or beyond the newest FileCount must be removed.
		fileTime := time.Now().Add(-time.Duration(idx*10) * time.Second).UTC()
		fileName := "service" + layout.Joiner + fileTime.Format(layout.Format) + ".log"
		fakes[idx].EXPECT().Name().Return(fileName)

		if idx >= layout.FileCount || time.Since(fileTime) >= layout.FileAge {
			mockFiler.EXPECT().Remove(filepath.Join(layout.ArchiveDir, fileName))
		}
	}

	//
	file, err := layout.Rotate(filepath.Join("/", "var", "log", "service.log"))
	assert.Equal(newName, file)
	assert.NoError(err)
}
