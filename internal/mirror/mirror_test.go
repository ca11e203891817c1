package mirror

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

func openTestMirror(t *testing.T) *Mirror {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func testIndex() *types.UniversityIndex {
	u := &types.UniversityIndex{Name: "University of Patras", Country: "Greece"}
	sem := u.EnsureSemester("1st Semester")

	alg := &types.LessonRecord{Title: "ALGORITHMS", Description: "Sorting and searching."}
	alg.SetSkills([]string{"esco:s1", "esco:s2"}, []string{"algorithm design", "complexity analysis"},
		nil, types.ProvenanceFresh)
	sem.Put(alg)

	sem.Put(&types.LessonRecord{Title: "CALCULUS", Description: "Limits."})
	return u
}

func TestSync_InsertsRows(t *testing.T) {
	m := openTestMirror(t)

	stats, err := m.Sync(context.Background(), testIndex())

	require.NoError(t, err)
	assert.Equal(t, "University of Patras", stats.University)
	assert.Equal(t, 2, stats.Lessons)
	assert.Equal(t, 2, stats.Skills)

	count, err := m.LessonCount(context.Background(), "University of Patras")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSync_ResyncReplacesSubtree(t *testing.T) {
	m := openTestMirror(t)
	_, err := m.Sync(context.Background(), testIndex())
	require.NoError(t, err)

	// Second sync with one lesson removed.
	u := &types.UniversityIndex{Name: "University of Patras", Country: "Greece"}
	u.EnsureSemester("1st Semester").Put(&types.LessonRecord{Title: "ALGORITHMS", Description: "Updated."})

	stats, err := m.Sync(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Lessons)

	count, err := m.LessonCount(context.Background(), "University of Patras")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "removed lessons must not linger after a resync")

	// Cascade removed the orphaned skills too.
	rows, err := m.SearchSkillRows(context.Background(), "algorithm", "", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSearchSkillRows_CaseInsensitiveSubstring(t *testing.T) {
	m := openTestMirror(t)
	_, err := m.Sync(context.Background(), testIndex())
	require.NoError(t, err)

	rows, err := m.SearchSkillRows(context.Background(), "ALGORITHM", "", 10)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "algorithm design", rows[0].SkillName)
	assert.Equal(t, "esco:s1", rows[0].SkillURL)
	assert.Equal(t, "ALGORITHMS", rows[0].Lesson)
	assert.Equal(t, "University of Patras", rows[0].University)
}

func TestSearchSkillRows_NoHits(t *testing.T) {
	m := openTestMirror(t)
	_, err := m.Sync(context.Background(), testIndex())
	require.NoError(t, err)

	rows, err := m.SearchSkillRows(context.Background(), "underwater basket weaving", "", 10)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSearchSkillRows_UniversityFilter(t *testing.T) {
	m := openTestMirror(t)
	_, err := m.Sync(context.Background(), testIndex())
	require.NoError(t, err)

	other := &types.UniversityIndex{Name: "University of Cyprus", Country: "Cyprus"}
	rec := &types.LessonRecord{Title: "ALGORITHMICS", Description: "y"}
	rec.SetSkills([]string{"esco:s9"}, []string{"algorithm analysis"}, nil, types.ProvenanceFresh)
	other.EnsureSemester("1st Semester").Put(rec)
	_, err = m.Sync(context.Background(), other)
	require.NoError(t, err)

	rows, err := m.SearchSkillRows(context.Background(), "algorithm", "University of Cyprus", 10)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "University of Cyprus", rows[0].University)

	all, err := m.SearchSkillRows(context.Background(), "algorithm", "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSync_MissingLabelFallsBackToUnknown(t *testing.T) {
	m := openTestMirror(t)
	u := &types.UniversityIndex{Name: "University of Patras"}
	rec := &types.LessonRecord{Title: "MYSTERY", Description: "x"}
	rec.SetSkills([]string{"esco:odd"}, []string{""}, nil, types.ProvenanceFresh)
	u.EnsureSemester("1st Semester").Put(rec)
	_, err := m.Sync(context.Background(), u)
	require.NoError(t, err)

	rows, err := m.SearchSkillRows(context.Background(), "unknown", "", 10)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.UnknownSkillLabel, rows[0].SkillName)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	m1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, m1.Close())

	m2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, m2.Close())
}
