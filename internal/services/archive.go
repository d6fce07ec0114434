package services

import (
	"encoding/json"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/pocketbase/pocketbase/core"

	"github.com/splitsync/splitsync/internal/models"
)

// Archive persists completed race snapshots to the races collection. It is
// a write-mostly collaborator: the core hands it immutable snapshot copies
// and never reads archived state back into a live session.
type Archive struct {
	app   core.App
	clock clockwork.Clock
}

func NewArchive(app core.App, clock clockwork.Clock) *Archive {
	return &Archive{
		app:   app,
		clock: clock,
	}
}

// SaveRace writes an immutable record of the session at the moment of the
// snapshot.
func (a *Archive) SaveRace(snap *models.SessionSnapshot, name string) (*core.Record, error) {
	collection, err := a.app.FindCollectionByNameOrId("races")
	if err != nil {
		return nil, fmt.Errorf("failed to find races collection: %w", err)
	}

	if name == "" {
		name = fmt.Sprintf("Race %s", snap.ID)
	}

	lapsJSON, err := json.Marshal(snap.Stopwatch.Laps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal laps: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("name", name)
	record.Set("total_time", snap.Stopwatch.ElapsedTime)
	record.Set("date", a.clock.Now())
	record.Set("participant_count", len(snap.Participants))
	record.Set("laps", lapsJSON)

	if err := a.app.Save(record); err != nil {
		return nil, fmt.Errorf("failed to save race record: %w", err)
	}

	return record, nil
}

// ListRaces returns archived races, most recent first. Ordering is an
// explicit sort on the date field, never insertion order.
func (a *Archive) ListRaces(limit int) ([]*core.Record, error) {
	records, err := a.app.FindRecordsByFilter(
		"races",
		"id != ''",
		"-date",
		limit,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list races: %w", err)
	}
	return records, nil
}
