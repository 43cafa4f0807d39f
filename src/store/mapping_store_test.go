package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/moneydash/backend/src/database"
	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *MappingStore {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })
	return New(database.DB)
}

func TestUpsertRuleNormalizesKey(t *testing.T) {
	s := newTestStore(t)

	inserted, err := s.UpsertRule("  netflix  com ", models.Classification{Category1: "Entertainment"})
	require.NoError(t, err)
	assert.Equal(t, "NETFLIX COM", inserted.Key)
	assert.Equal(t, "Entertainment", inserted.Category1)
	assert.False(t, inserted.CreatedAt.IsZero())

	fetched, err := s.GetRule("NETFLIX COM")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, inserted.ID, fetched.ID)
}

func TestUpsertRuleEmptyKeyRejected(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpsertRule("   ", models.Classification{})
	assert.Error(t, err)
}

func TestUpsertRuleConflictIsAudited(t *testing.T) {
	s := newTestStore(t)

	first, err := s.UpsertRule("NETFLIX.COM", models.Classification{Category1: "Entertainment"})
	require.NoError(t, err)

	// Same tuple: no conflict recorded.
	_, err = s.UpsertRule("NETFLIX.COM", models.Classification{Category1: "Entertainment"})
	require.NoError(t, err)
	assert.Equal(t, 0, countConflicts(t, s))

	// Different tuple: last write wins and the old tuple is audited.
	second, err := s.UpsertRule("NETFLIX.COM", models.Classification{Category1: "Subscriptions"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Subscriptions", second.Category1)
	assert.Equal(t, 1, countConflicts(t, s))
}

func countConflicts(t *testing.T, s *MappingStore) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM mapping_conflicts`).Scan(&n))
	return n
}

func TestListRulesInsertionOrder(t *testing.T) {
	s := newTestStore(t)

	for _, key := range []string{"CHARLIE", "ALPHA", "BRAVO"} {
		_, err := s.UpsertRule(key, models.Classification{})
		require.NoError(t, err)
	}

	rules, err := s.ListRules()
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "CHARLIE", rules[0].Key)
	assert.Equal(t, "ALPHA", rules[1].Key)
	assert.Equal(t, "BRAVO", rules[2].Key)
}

func TestRuleTagsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	inserted, err := s.UpsertRule("GYM MEMBERSHIP", models.Classification{
		Tags: []string{"health", " recurring ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"health", "recurring"}, inserted.Tags)
}

func TestDeleteRule(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpsertRule("NETFLIX.COM", models.Classification{})
	require.NoError(t, err)

	require.NoError(t, s.DeleteRule("netflix.com"))
	fetched, err := s.GetRule("NETFLIX.COM")
	require.NoError(t, err)
	assert.Nil(t, fetched)

	// Deleting a missing key is a no-op.
	assert.NoError(t, s.DeleteRule("NEVER EXISTED"))
}

func TestSeedDefaultsOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SeedDefaults())

	lists, err := s.GetLists()
	require.NoError(t, err)
	assert.Contains(t, lists[models.ListAccountTypes], "income")
	assert.Contains(t, lists[models.ListAccountTypes], "expense")
	seeded := len(lists[models.ListCategories])
	require.Greater(t, seeded, 0)

	// Re-seeding must not duplicate or clobber user edits.
	require.NoError(t, s.AddListItem(models.ListCategories, "Custom Category"))
	require.NoError(t, s.SeedDefaults())
	lists, err = s.GetLists()
	require.NoError(t, err)
	assert.Len(t, lists[models.ListCategories], seeded+1)
}

func TestListItemsAddRemove(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddListItem(models.ListTags, "travel"))
	require.NoError(t, s.AddListItem(models.ListTags, "travel")) // duplicate is a no-op

	lists, err := s.GetLists()
	require.NoError(t, err)
	assert.Equal(t, []string{"travel"}, lists[models.ListTags])

	require.NoError(t, s.RemoveListItem(models.ListTags, "travel"))
	lists, err = s.GetLists()
	require.NoError(t, err)
	assert.Empty(t, lists[models.ListTags])

	assert.Error(t, s.AddListItem("", "x"))
	assert.Error(t, s.AddListItem(models.ListTags, "  "))
}

func TestListsCSVRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddListItem(models.ListTags, "travel"))
	require.NoError(t, s.AddListItem(models.ListPayees, "Netflix"))

	var exported strings.Builder
	require.NoError(t, s.ExportListsCSV(&exported))
	assert.True(t, strings.HasPrefix(exported.String(), "list_name,item\n"))
	assert.Contains(t, exported.String(), "tags,travel")

	// Import into a fresh store reproduces the items.
	fresh := newTestStore(t)
	applied, err := fresh.ImportListsCSV(strings.NewReader(exported.String()))
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	lists, err := fresh.GetLists()
	require.NoError(t, err)
	assert.Equal(t, []string{"travel"}, lists[models.ListTags])
	assert.Equal(t, []string{"Netflix"}, lists[models.ListPayees])
}

func TestImportListsCSVValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ImportListsCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = s.ImportListsCSV(strings.NewReader("wrong,columns\na,b\n"))
	assert.Error(t, err)

	// Header matching is case-insensitive and tolerates extra columns.
	applied, err := s.ImportListsCSV(strings.NewReader("Item,LIST_NAME,notes\ntravel,tags,ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

func TestSnapshotConsistency(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpsertRule("NETFLIX.COM", models.Classification{Category1: "Entertainment"})
	require.NoError(t, err)
	require.NoError(t, s.AddListItem(models.ListTags, "travel"))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Rules, 1)
	assert.Equal(t, "NETFLIX.COM", snap.Rules[0].Key)
	assert.Equal(t, []string{"travel"}, snap.Lists[models.ListTags])
}
