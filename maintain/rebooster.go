package maintain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ossearch/ossearch"
)

// ReboostPageSize is how many documents the rebooster reads per page.
const ReboostPageSize = 100

// rootDocFilter selects domain-root documents that carry both content and
// a title.
const rootDocFilter = "-path:['' TO *] AND content:['' TO *] AND title:['' TO *]"

// Rebooster walks every domain-root document in the main collection and
// reapplies its index-time field boosts, committing once at the end.
type Rebooster struct {
	Index  ossearch.Index
	Logger zerolog.Logger
}

// Run reboosts the whole main collection.
func (r *Rebooster) Run(ctx context.Context) error {
	for page := 0; ; page++ {
		docs, err := r.Index.Search(ctx, ossearch.Main, ossearch.Query{
			Q:       "*:*",
			Filter:  rootDocFilter,
			Rows:    ReboostPageSize,
			Start:   page * ReboostPageSize,
			Timeout: 999 * time.Second,
		})
		if err != nil {
			return err
		}

		for _, doc := range docs {
			boosts := ossearch.BoostFor(doc)
			if boosts == nil {
				continue
			}
			r.Logger.Info().Msg("Reboosting " + doc.ID + "...")
			doc.Version = 0
			if err := r.Index.Add(ctx, ossearch.Main, []*ossearch.Document{doc}, ossearch.AddOptions{
				Overwrite: true,
				Boosts:    boosts,
			}); err != nil {
				return err
			}
		}

		if len(docs) != ReboostPageSize {
			break
		}
	}

	return r.Index.Commit(ctx, ossearch.Main)
}
