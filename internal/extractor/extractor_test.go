package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_MissingFileIsUnreadable(t *testing.T) {
	e := New(0)

	doc, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	assert.ErrorIs(t, err, ErrDocumentUnreadable)
	require.NotNil(t, doc)
	assert.Zero(t, doc.PageCount(), "unreadable documents degrade to zero pages")
}

func TestExtract_GarbageFileIsUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))
	e := New(0)

	doc, err := e.Extract(context.Background(), path)

	assert.ErrorIs(t, err, ErrDocumentUnreadable)
	assert.Zero(t, doc.PageCount())
}

func TestDocumentKey_ChangesWithContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	k1, err := documentKey(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	k2, err := documentKey(path)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2, "rewritten files must not hit the memo")
}
