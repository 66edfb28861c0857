package migration

import (
	"context"

	"github.com/VAIOT/lottery-backend/internal/entity"
)

func Migrate(ctx context.Context) error {
	return entity.MigrateTable(ctx)
}
