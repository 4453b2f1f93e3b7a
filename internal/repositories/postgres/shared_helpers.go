package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/TutorHub-2025/messaging-service/internal/repositories"
)

// handleDBError classifies gorm errors into the repository error taxonomy and
// wraps them with the failing operation.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrDuplicateKey)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
