// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRetrieval(ctx, "topology", []string{"dblp", "arxiv"}, 2, 5, 1, 0)
	require.NoError(t, err)
	require.NoError(t, s.RecordCommit(ctx, id, []string{"Smith2020", "Jones2019"}, "/tmp/refs.bib"))

	_, err = s.RecordRetrieval(ctx, "knots", []string{"zbmath"}, 1, 3, 0, 2)
	require.NoError(t, err)

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Newest first.
	assert.Equal(t, "knots", list[0].Query)
	assert.Equal(t, []string{"zbmath"}, list[0].Backends)
	assert.Equal(t, 2, list[0].ParseErrors)
	assert.Empty(t, list[0].Commits)

	assert.Equal(t, "topology", list[1].Query)
	require.Len(t, list[1].Commits, 1)
	assert.Equal(t, []string{"Smith2020", "Jones2019"}, list[1].Commits[0].Keys)
	assert.Equal(t, "/tmp/refs.bib", list[1].Commits[0].Target)
	assert.False(t, list[1].CreatedAt.IsZero())
}

func TestRecordCommitInlineTarget(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRetrieval(ctx, "q", []string{"dblp"}, 1, 1, 0, 0)
	require.NoError(t, err)
	require.NoError(t, s.RecordCommit(ctx, id, []string{"K"}, ""))

	list, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list[0].Commits, 1)
	assert.Equal(t, "-", list[0].Commits[0].Target)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRetrieval(ctx, "q", []string{"dblp"}, 1, 1, 0, 0)
	require.NoError(t, err)
	require.NoError(t, s.RecordCommit(ctx, id, []string{"K"}, "t.bib"))
	require.NoError(t, s.Clear(ctx))

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.RecordRetrieval(context.Background(), "q", nil, 0, 0, 0, 0)
	assert.NoError(t, err)
}
