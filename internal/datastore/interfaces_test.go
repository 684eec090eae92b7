package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func testRecord(filename string) *ImageRecord {
	return &ImageRecord{
		Filename:      filename,
		Description:   "Missile system imagery featuring scud, associated with Iran",
		Country:       "Iran",
		Keywords:      []string{"scud", "missile", "iran"},
		Confidence:    0.91,
		SourceURL:     "https://example.org/images/" + filename,
		SourceType:    "archive",
		OriginalTitle: "launch site",
		MetadataIsAI:  true,
		Status:        StatusProcessed,
		ProcessedAt:   time.Now(),
	}
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testRecord("a.jpg")))

	got, err := store.Get("a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Iran", got.Country)
	assert.Equal(t, []string{"scud", "missile", "iran"}, got.Keywords)
	assert.Equal(t, StatusProcessed, got.Status)
	assert.True(t, got.MetadataIsAI)
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("missing.jpg")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSaveDuplicateRedirectsToUpdate(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testRecord("a.jpg")))

	second := testRecord("a.jpg")
	second.Description = "Armored vehicle imagery featuring t-72"
	second.Keywords = []string{"t-72", "armor"}
	second.Confidence = 0.75
	second.SourceURL = "https://other.example.org/a.jpg"
	second.OriginalTitle = "should not overwrite"
	require.NoError(t, store.Save(second))

	got, err := store.Get("a.jpg")
	require.NoError(t, err)
	// Enrichment columns updated.
	assert.Equal(t, "Armored vehicle imagery featuring t-72", got.Description)
	assert.Equal(t, []string{"t-72", "armor"}, got.Keywords)
	assert.InDelta(t, 0.75, got.Confidence, 1e-9)
	// Provenance columns preserved from the first write.
	assert.Equal(t, "https://example.org/images/a.jpg", got.SourceURL)
	assert.Equal(t, "launch site", got.OriginalTitle)
}

func TestUpdatePreservingWritesZeroValues(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testRecord("a.jpg")))

	err := store.UpdatePreserving("a.jpg", &FieldUpdate{
		Description: "Military or defense-related image",
		Keywords:    nil,
		Confidence:  0,
		Status:      StatusPending,
	})
	require.NoError(t, err)

	got, err := store.Get("a.jpg")
	require.NoError(t, err)
	assert.Zero(t, got.Confidence)
	assert.Equal(t, StatusPending, got.Status)
	// Untouched columns keep their values.
	assert.Equal(t, "Iran", got.Country)
	assert.Equal(t, "archive", got.SourceType)
}

func TestUpdatePreservingMissingRecord(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdatePreserving("missing.jpg", &FieldUpdate{Status: StatusProcessed})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCommitBatchMixedInsertAndUpdate(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testRecord("existing.jpg")))

	updated := testRecord("existing.jpg")
	updated.Description = "Naval imagery featuring frigate"
	batch := []*ImageRecord{
		testRecord("new1.jpg"),
		updated,
		testRecord("new2.jpg"),
	}
	require.NoError(t, store.CommitBatch(batch))

	got, err := store.Get("existing.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Naval imagery featuring frigate", got.Description)

	known, err := store.KnownFilenames()
	require.NoError(t, err)
	assert.Len(t, known, 3)
	assert.True(t, known["new1.jpg"])
	assert.True(t, known["new2.jpg"])
}

func TestCommitBatchEmpty(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CommitBatch(nil))
}

func TestExistsAndKnownFilenames(t *testing.T) {
	store := newTestStore(t)

	ok, err := store.Exists("a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(testRecord("a.jpg")))

	ok, err = store.Exists("a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	known, err := store.KnownFilenames()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a.jpg": true}, known)
}

func TestSearchByDescription(t *testing.T) {
	store := newTestStore(t)

	missile := testRecord("missile.jpg")
	tank := testRecord("tank.jpg")
	tank.Description = "Armored vehicle imagery featuring t-72, associated with Russia"
	tank.Country = "Russia"
	tank.Keywords = []string{"t-72", "armor", "russia"}
	require.NoError(t, store.Save(missile))
	require.NoError(t, store.Save(tank))

	results, err := store.SearchByDescription("missile", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "missile.jpg", results[0].Filename)

	// Keyword column matches too.
	results, err = store.SearchByDescription("armor", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "tank.jpg", results[0].Filename)

	results, err = store.SearchByDescription("no such thing", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRanksDescriptionMatchesFirst(t *testing.T) {
	store := newTestStore(t)

	// Matches "russia" only in the filename.
	byName := testRecord("russia-parade.jpg")
	byName.Description = "Military personnel imagery featuring soldier"
	byName.Country = "Unknown"
	byName.Keywords = []string{"soldier", "parade"}
	byName.ProcessedAt = time.Now()

	// Matches "russia" in the description, despite being older.
	byDesc := testRecord("tank.jpg")
	byDesc.Description = "Armored vehicle imagery featuring t-72, associated with Russia"
	byDesc.Country = "Russia"
	byDesc.Keywords = []string{"t-72", "armor"}
	byDesc.ProcessedAt = time.Now().Add(-time.Hour)

	require.NoError(t, store.Save(byName))
	require.NoError(t, store.Save(byDesc))

	results, err := store.SearchByDescription("russia", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "tank.jpg", results[0].Filename)
	assert.Equal(t, "russia-parade.jpg", results[1].Filename)
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)

	a := testRecord("a.jpg")
	b := testRecord("b.jpg")
	b.Country = "Russia"
	c := testRecord("c.jpg")
	c.Status = StatusPending
	c.Country = ""
	d := testRecord("d.jpg")
	d.Status = StatusFailed

	for _, rec := range []*ImageRecord{a, b, c, d} {
		require.NoError(t, store.Save(rec))
	}

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Processed)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Failed)
	require.Len(t, stats.Countries, 2)
	assert.Equal(t, CountryCount{Country: "Iran", Count: 2}, stats.Countries[0])
	assert.Equal(t, CountryCount{Country: "Russia", Count: 1}, stats.Countries[1])
}

func TestNewSelectsDriver(t *testing.T) {
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "x.db")
	store := New(settings)
	require.IsType(t, &SQLiteStore{}, store)

	settings = &conf.Settings{}
	settings.Output.MySQL.Enabled = true
	store = New(settings)
	require.IsType(t, &MySQLStore{}, store)

	settings = &conf.Settings{}
	assert.Nil(t, New(settings))
}
