package persistence

import (
	"context"
	"errors"

	"github.com/ippis/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm errors onto the domain taxonomy.
// Unknown failures become PERSISTENCE_ERROR with the driver error as cause.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrConflict.Wrap(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return shared.ErrPersistence.Wrap(err)
}

func notFound(what string) error {
	return shared.ErrNotFound.WithMessage(what + " not found")
}
