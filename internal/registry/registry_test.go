package registry

import (
	"path/filepath"
	"testing"

	"github.com/ber2minsin/intime/internal/database"
	"github.com/ber2minsin/intime/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return New(database.NewRepository(db))
}

func TestResolveCreatesOnFirstSight(t *testing.T) {
	reg := testRegistry(t)

	app, err := reg.Resolve("firefox", "/usr/bin/firefox")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if app.ID == 0 {
		t.Error("Resolve() returned an application without an id")
	}
	if app.Name != "firefox" {
		t.Errorf("Name = %s, want firefox", app.Name)
	}
	if app.Path != "/usr/bin/firefox" {
		t.Errorf("Path = %s, want /usr/bin/firefox", app.Path)
	}
	if app.Icon != nil {
		t.Errorf("Icon = %v, want none on creation", app.Icon)
	}
}

func TestResolveIsStable(t *testing.T) {
	reg := testRegistry(t)

	first, err := reg.Resolve("firefox", "/usr/bin/firefox")
	if err != nil {
		t.Fatalf("first Resolve() error: %v", err)
	}
	second, err := reg.Resolve("firefox", "/usr/bin/firefox")
	if err != nil {
		t.Fatalf("second Resolve() error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("ids differ across identical resolves: %d vs %d", first.ID, second.ID)
	}
}

func TestResolveUpdatesPathInPlace(t *testing.T) {
	reg := testRegistry(t)

	first, err := reg.Resolve("code", "/usr/share/code/code")
	if err != nil {
		t.Fatalf("first Resolve() error: %v", err)
	}

	moved, err := reg.Resolve("code", "/opt/code/code")
	if err != nil {
		t.Fatalf("Resolve() after relocation error: %v", err)
	}
	if moved.ID != first.ID {
		t.Errorf("path change created a new identity: id %d, want %d", moved.ID, first.ID)
	}
	if moved.Path != "/opt/code/code" {
		t.Errorf("Path = %s, want /opt/code/code", moved.Path)
	}

	again, err := reg.Resolve("code", "/opt/code/code")
	if err != nil {
		t.Fatalf("Resolve() after update error: %v", err)
	}
	if again.Path != "/opt/code/code" {
		t.Errorf("stored path = %s, want /opt/code/code", again.Path)
	}
}

func TestResolveNamesAreCaseSensitive(t *testing.T) {
	reg := testRegistry(t)

	lower, err := reg.Resolve("firefox", "/usr/bin/firefox")
	if err != nil {
		t.Fatalf("Resolve(firefox) error: %v", err)
	}
	upper, err := reg.Resolve("Firefox", "/usr/bin/firefox")
	if err != nil {
		t.Fatalf("Resolve(Firefox) error: %v", err)
	}

	if lower.ID == upper.ID {
		t.Error("differently-cased names share one identity, want distinct rows")
	}
}

// vanishingStore accepts inserts but never finds anything, simulating the
// corrupted state Resolve guards against.
type vanishingStore struct {
	created int
}

func (s *vanishingStore) GetApplicationByName(name string) (*models.Application, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *vanishingStore) CreateApplication(app *models.Application) error {
	s.created++
	return nil
}

func (s *vanishingStore) UpdateApplicationPath(id int64, path string) error {
	return nil
}

func TestResolveInconsistentReRead(t *testing.T) {
	var _ Store = (*vanishingStore)(nil)

	store := &vanishingStore{}
	reg := New(store)

	_, err := reg.Resolve("ghost", "/usr/bin/ghost")
	if !errors.Is(err, ErrInconsistent) {
		t.Errorf("Resolve() error = %v, want ErrInconsistent", err)
	}
	if store.created != 1 {
		t.Errorf("insert attempts = %d, want 1", store.created)
	}
}
