package runs

import (
	"errors"
	"strings"

	"github.com/mmrzaf/datacraft/internal/domain"
)

var ErrRunNotFound = errors.New("run not found")

// Repository stores the history of generation runs.
type Repository interface {
	Init() error
	Create(run *domain.Run) error
	Update(run *domain.Run) error
	Get(id string) (*domain.Run, error)
	List(limit int, status string) ([]*domain.Run, error)
	Close() error
}

// Open picks the backend from the DSN: postgres URLs go to Postgres,
// anything else is treated as a sqlite file path.
func Open(dsn string) Repository {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return NewPostgresRepository(dsn)
	}
	return NewSQLiteRepository(dsn)
}
