package registry

import (
	"github.com/ber2minsin/intime/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// ErrInconsistent reports that an application insert succeeded but the
// follow-up read by name found nothing. This is a corrupted-state
// condition; callers log it and drop the cycle rather than crash.
var ErrInconsistent = errors.New("application missing after insert")

// Store is the slice of the persistence layer the registry needs.
type Store interface {
	GetApplicationByName(name string) (*models.Application, error)
	CreateApplication(app *models.Application) error
	UpdateApplicationPath(id int64, path string) error
}

// Registry resolves observed (name, path) pairs to persisted application
// identities. Identity is keyed by exact, case-sensitive name; a changed
// path is rewritten in place so reinstalls and relocations do not
// fragment an application's history across two rows. Nothing here ever
// deletes.
type Registry struct {
	store Store
}

func New(store Store) *Registry {
	return &Registry{store: store}
}

// Resolve returns the application for name, creating it on first sight
// and updating its stored path when the observed one differs. A created
// row is read back to obtain the generated id; an empty read-back yields
// ErrInconsistent.
func (r *Registry) Resolve(name, path string) (*models.Application, error) {
	app, err := r.store.GetApplicationByName(name)
	if err == nil {
		if app.Path == path {
			return app, nil
		}
		if err := r.store.UpdateApplicationPath(app.ID, path); err != nil {
			return nil, err
		}
		app.Path = path
		return app, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.store.CreateApplication(&models.Application{Name: name, Path: path}); err != nil {
		return nil, err
	}

	app, err = r.store.GetApplicationByName(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInconsistent
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}
