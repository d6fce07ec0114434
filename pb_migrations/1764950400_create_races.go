package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		races := core.NewBaseCollection("races")
		races.ListRule = nil
		races.ViewRule = nil
		races.CreateRule = nil
		races.UpdateRule = nil
		races.DeleteRule = nil

		races.Fields.Add(&core.TextField{
			Name:     "name",
			Required: true,
			Max:      100,
		})

		// total elapsed milliseconds at the moment of archiving
		races.Fields.Add(&core.NumberField{
			Name:     "total_time",
			Required: false,
		})

		races.Fields.Add(&core.DateField{
			Name:     "date",
			Required: true,
		})

		races.Fields.Add(&core.NumberField{
			Name:     "participant_count",
			Required: false,
		})

		races.Fields.Add(&core.JSONField{
			Name:     "laps",
			Required: false,
			MaxSize:  51200,
		})

		races.Indexes = []string{
			"CREATE INDEX idx_races_date ON races(date)",
		}

		return app.Save(races)
	}, func(app core.App) error {
		races, err := app.FindCollectionByNameOrId("races")
		if err == nil && races != nil {
			return app.Delete(races)
		}
		return nil
	})
}
