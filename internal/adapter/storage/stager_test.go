package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgErrors "project-tracker/pkg/errors"
)

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "home-page-v2.png", SanitizeFileName("home page  v2.png"))
	assert.Equal(t, "a-b.png", SanitizeFileName("a/b.png"))
	assert.Equal(t, "tab-name.jpg", SanitizeFileName("tab\tname.jpg"))
	assert.Equal(t, "file", SanitizeFileName("   "))
}

func TestImageKey_NamespacedAndUnique(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	a := ImageKey(42, "shot 1.png", now)
	b := ImageKey(42, "shot 1.png", now)

	assert.True(t, strings.HasPrefix(a, "42/1700000000000-"))
	assert.True(t, strings.HasSuffix(a, "-shot-1.png"))
	assert.NotEqual(t, a, b)

	doc := DocumentKey(42, "brief.pdf", now)
	assert.True(t, strings.HasPrefix(doc, "42/docs/1700000000000-"))
}

func TestStageImages_PreservesOrder(t *testing.T) {
	store := NewMemoryStore("http://cdn.test/assets")
	stager := NewMediaStager(store, zap.NewNop())

	uploads := []Upload{
		BytesUpload("first.png", "image/png", []byte("1")),
		BytesUpload("second image.jpg", "image/jpeg", []byte("22")),
		BytesUpload("third.webp", "image/webp", []byte("333")),
	}
	staged, err := stager.StageImages(context.Background(), 7, uploads)
	require.NoError(t, err)
	require.Len(t, staged, 3)

	for i, m := range staged {
		assert.Equal(t, i, m.SortOrder)
		assert.Equal(t, uploads[i].FileName, m.FileName)
		assert.Equal(t, uploads[i].ContentType, m.MimeType)
		assert.Equal(t, uploads[i].Size, m.Size)
		assert.True(t, strings.HasPrefix(m.Key, "7/"))
		assert.Equal(t, "http://cdn.test/assets/"+m.Key, m.URL)
		assert.True(t, store.Has(m.Key))
	}
}

func TestStageImages_AnyFailureFailsBatch(t *testing.T) {
	store := NewMemoryStore("").FailOn("broken")
	stager := NewMediaStager(store, zap.NewNop())

	_, err := stager.StageImages(context.Background(), 1, []Upload{
		BytesUpload("ok.png", "image/png", []byte("x")),
		BytesUpload("broken.png", "image/png", []byte("y")),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgErrors.ErrMediaUploadFailed))
}

func TestStageImages_Empty(t *testing.T) {
	stager := NewMediaStager(NewMemoryStore(""), zap.NewNop())
	staged, err := stager.StageImages(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestMemoryStore_KeyFromURL(t *testing.T) {
	store := NewMemoryStore("http://cdn.test/assets/")
	url, err := store.Put(context.Background(), "9/docs/a.pdf", strings.NewReader("pdf"), 3, "application/pdf")
	require.NoError(t, err)

	key, ok := store.KeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "9/docs/a.pdf", key)

	_, ok = store.KeyFromURL("https://elsewhere.example/a.pdf")
	assert.False(t, ok)

	stager := NewMediaStager(store, zap.NewNop())
	stager.Discard(context.Background(), key, "")
	assert.False(t, store.Has(key))
}
