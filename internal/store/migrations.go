package store

import (
	"context"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	for _, m := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
