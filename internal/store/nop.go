package store

import (
	"context"

	"github.com/amishk599/ibwatch/internal/model"
)

// NopStore is a Persister that writes nothing. Every record is reported as
// new, which lets dry runs show what a crawl would have accepted.
type NopStore struct{}

var _ model.Persister = NopStore{}

func (NopStore) Upsert(_ context.Context, records []model.NormalizedRecord) (model.UpsertResult, error) {
	return model.UpsertResult{Inserted: len(records), New: records}, nil
}
