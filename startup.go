package backoffice_integration

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rotisserie/eris"
	boModels "github.com/zarbox/backoffice-integration/models"
	boStorage "github.com/zarbox/backoffice-integration/storage"
	boUtil "github.com/zarbox/backoffice-integration/utils"
)

// SeedListStates writes the default params of every known table that has no
// saved state yet, so the first render after a fresh deployment matches the
// screen defaults instead of an empty hash.
func SeedListStates(ctx context.Context, rdb *boStorage.RedisInstance, defaults map[string]boModels.ListParams) error {

	for storageKey, params := range defaults {
		exists, err := rdb.RDB.HExists(ctx, boUtil.ListStateRedis, storageKey).Result()
		if err != nil {
			return eris.Wrap(err, "checking list state")
		}
		if exists {
			continue
		}

		raw, err := json.Marshal(params)
		if err != nil {
			return eris.Wrap(err, "marshalling default list state")
		}
		if err := rdb.RDB.HSet(ctx, boUtil.ListStateRedis, storageKey, string(raw)).Err(); err != nil {
			return eris.Wrap(err, "seeding list state")
		}
	}

	return nil
}

// PruneListStates drops persisted entries that no longer parse into
// ListParams. Corrupt state must never wedge a screen on restore.
func PruneListStates(ctx context.Context, rdb *boStorage.RedisInstance) error {

	entries, err := rdb.RDB.HGetAll(ctx, boUtil.ListStateRedis).Result()
	if err != nil {
		return eris.Wrap(err, "reading list states")
	}

	for storageKey, raw := range entries {
		var params boModels.ListParams
		if err := json.Unmarshal([]byte(raw), &params); err != nil || params.Page < 1 || params.Limit < 1 {
			slog.Info("pruning corrupt list state", "storageKey", storageKey)
			if err := rdb.RDB.HDel(ctx, boUtil.ListStateRedis, storageKey).Err(); err != nil {
				return eris.Wrap(err, "deleting corrupt list state")
			}
		}
	}

	return nil
}
