package integration_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/services"
	"github.com/splitsync/splitsync/tests/helpers"
)

// finishedRace drives a store session through a short run and returns its
// snapshot: 100ms elapsed with two laps.
func finishedRace(t *testing.T, store *services.SessionStore, clock *clockwork.FakeClock, username string) *models.SessionSnapshot {
	t.Helper()

	id := store.CreateSession("user-"+username, username)
	require.True(t, store.StartStopwatch(id))
	clock.Advance(60 * time.Millisecond)
	_, ok := store.RecordLap(id)
	require.True(t, ok)
	clock.Advance(40 * time.Millisecond)
	_, ok = store.RecordLap(id)
	require.True(t, ok)
	require.True(t, store.StopStopwatch(id))

	snap, found := store.GetSession(id)
	require.True(t, found)
	return snap
}

func TestArchive_SaveRace(t *testing.T) {
	app := helpers.NewArchiveApp(t)
	clock := clockwork.NewFakeClock()
	store := services.NewSessionStore(services.NewCodeGenerator(), clock)
	archive := services.NewArchive(app, clock)

	snap := finishedRace(t, store, clock, "Ann")

	record, err := archive.SaveRace(snap, "Morning Run")
	require.NoError(t, err)

	assert.Equal(t, "Morning Run", record.GetString("name"))
	assert.Equal(t, 100.0, record.GetFloat("total_time"))
	assert.Equal(t, 1.0, record.GetFloat("participant_count"))

	var laps []models.LapSnapshot
	require.NoError(t, json.Unmarshal([]byte(record.GetString("laps")), &laps))
	require.Len(t, laps, 2)
	assert.Equal(t, 1, laps[0].Number)
	assert.Equal(t, int64(60), laps[0].Time)
	assert.Equal(t, 2, laps[1].Number)
	assert.Equal(t, int64(100), laps[1].Time)
}

func TestArchive_SaveRaceDefaultName(t *testing.T) {
	app := helpers.NewArchiveApp(t)
	clock := clockwork.NewFakeClock()
	store := services.NewSessionStore(services.NewCodeGenerator(), clock)
	archive := services.NewArchive(app, clock)

	snap := finishedRace(t, store, clock, "Ann")

	record, err := archive.SaveRace(snap, "")
	require.NoError(t, err)
	assert.Equal(t, "Race "+snap.ID, record.GetString("name"))
}

func TestArchive_SaveDoesNotTouchLiveSession(t *testing.T) {
	app := helpers.NewArchiveApp(t)
	clock := clockwork.NewFakeClock()
	store := services.NewSessionStore(services.NewCodeGenerator(), clock)
	archive := services.NewArchive(app, clock)

	snap := finishedRace(t, store, clock, "Ann")
	_, err := archive.SaveRace(snap, "Saved")
	require.NoError(t, err)

	// The live session keeps running after archiving
	require.True(t, store.StartStopwatch(snap.ID))
	fresh, found := store.GetSession(snap.ID)
	require.True(t, found)
	assert.True(t, fresh.Stopwatch.IsRunning)
}

func TestArchive_ListRacesNewestFirst(t *testing.T) {
	app := helpers.NewArchiveApp(t)
	clock := clockwork.NewFakeClock()
	store := services.NewSessionStore(services.NewCodeGenerator(), clock)
	archive := services.NewArchive(app, clock)

	for _, name := range []string{"First", "Second", "Third"} {
		snap := finishedRace(t, store, clock, name)
		_, err := archive.SaveRace(snap, name)
		require.NoError(t, err)
		clock.Advance(time.Hour)
	}

	records, err := archive.ListRaces(10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Third", records[0].GetString("name"))
	assert.Equal(t, "Second", records[1].GetString("name"))
	assert.Equal(t, "First", records[2].GetString("name"))
}

func TestArchive_ListRacesHonorsLimit(t *testing.T) {
	app := helpers.NewArchiveApp(t)
	clock := clockwork.NewFakeClock()
	store := services.NewSessionStore(services.NewCodeGenerator(), clock)
	archive := services.NewArchive(app, clock)

	for i := 0; i < 5; i++ {
		snap := finishedRace(t, store, clock, "Ann")
		_, err := archive.SaveRace(snap, "")
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	records, err := archive.ListRaces(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
