package database

import (
	"time"

	"github.com/ber2minsin/intime/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// DefaultEventLimit bounds range queries when the caller does not supply
// a limit of its own.
const DefaultEventLimit = 2000

// Repository handles all database operations for applications, focus
// events and screenshots
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateApplication inserts a new application row
func (r *Repository) CreateApplication(app *models.Application) error {
	result := r.db.Create(app)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert application")
	}
	return nil
}

// GetApplicationByName retrieves an application by its exact name.
// Returns gorm.ErrRecordNotFound when no row matches.
func (r *Repository) GetApplicationByName(name string) (*models.Application, error) {
	var app models.Application
	result := r.db.Where("name = ?", name).First(&app)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get application")
	}
	return &app, nil
}

// UpdateApplicationPath rewrites the stored executable path for an
// application, preserving its id and history.
func (r *Repository) UpdateApplicationPath(id int64, path string) error {
	result := r.db.Model(&models.Application{}).Where("id = ?", id).Update("path", path)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update application path")
	}
	return nil
}

// CreateFocusEvent inserts a new focus event. A zero CreatedAt is filled
// with the current time; callers may pre-set it (the synthetic closing
// event carries its own timestamp).
func (r *Repository) CreateFocusEvent(event *models.FocusEvent) error {
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert focus event")
	}
	return nil
}

// CreateScreenshot inserts a captured frame for an application
func (r *Repository) CreateScreenshot(shot *models.Screenshot) error {
	if shot.CreatedAt == 0 {
		shot.CreatedAt = time.Now().Unix()
	}
	result := r.db.Create(shot)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert screenshot")
	}
	return nil
}

// EventsInRange returns focus events with start <= created_at <= end
// (epoch seconds, both endpoints inclusive) joined with the application
// name, ascending by timestamp, at most limit rows. A non-positive limit
// falls back to DefaultEventLimit.
func (r *Repository) EventsInRange(start, end int64, limit int) ([]models.EventRecord, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	var records []models.EventRecord
	result := r.db.Model(&models.FocusEvent{}).
		Select("focus_events.app_id, applications.name AS app_name, focus_events.window_title, focus_events.event_kind, focus_events.created_at").
		Joins("JOIN applications ON applications.id = focus_events.app_id").
		Where("focus_events.created_at >= ? AND focus_events.created_at <= ?", start, end).
		Order("focus_events.created_at ASC").
		Limit(limit).
		Scan(&records)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query focus events")
	}

	return records, nil
}

// LatestEvent retrieves the most recent focus event, or nil when the log
// is empty.
func (r *Repository) LatestEvent() (*models.EventRecord, error) {
	var records []models.EventRecord
	result := r.db.Model(&models.FocusEvent{}).
		Select("focus_events.app_id, applications.name AS app_name, focus_events.window_title, focus_events.event_kind, focus_events.created_at").
		Joins("JOIN applications ON applications.id = focus_events.app_id").
		Order("focus_events.created_at DESC").
		Limit(1).
		Scan(&records)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// NearestScreenshot finds the stored screenshot closest in time to ts
// (epoch seconds), optionally restricted to one application. The closest
// row at or after ts and the closest row before ts are each fetched with
// one indexed scan; the nearer of the two wins and ties go to the older
// row. Returns nil when no screenshot qualifies. Image bytes are
// normalized to PNG on the way out.
func (r *Repository) NearestScreenshot(ts int64, appID *int64) (*models.Screenshot, error) {
	after, err := r.screenshotAfter(ts, appID)
	if err != nil {
		return nil, err
	}
	before, err := r.screenshotBefore(ts, appID)
	if err != nil {
		return nil, err
	}

	nearest := closerScreenshot(ts, before, after)
	if nearest == nil {
		return nil, nil
	}
	nearest.Image = normalizePNG(nearest.Image)
	return nearest, nil
}

func (r *Repository) screenshotAfter(ts int64, appID *int64) (*models.Screenshot, error) {
	query := r.db.Where("created_at >= ?", ts)
	if appID != nil {
		query = query.Where("app_id = ?", *appID)
	}

	var shots []models.Screenshot
	result := query.Order("created_at ASC").Limit(1).Find(&shots)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to scan screenshots after timestamp")
	}
	if len(shots) == 0 {
		return nil, nil
	}
	return &shots[0], nil
}

func (r *Repository) screenshotBefore(ts int64, appID *int64) (*models.Screenshot, error) {
	query := r.db.Where("created_at < ?", ts)
	if appID != nil {
		query = query.Where("app_id = ?", *appID)
	}

	var shots []models.Screenshot
	result := query.Order("created_at DESC").Limit(1).Find(&shots)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to scan screenshots before timestamp")
	}
	if len(shots) == 0 {
		return nil, nil
	}
	return &shots[0], nil
}

// closerScreenshot picks whichever candidate sits nearer to ts by
// absolute distance. Ties favor the older screenshot.
func closerScreenshot(ts int64, before, after *models.Screenshot) *models.Screenshot {
	if before == nil {
		return after
	}
	if after == nil {
		return before
	}

	distBefore := ts - before.CreatedAt
	distAfter := after.CreatedAt - ts
	if distAfter < distBefore {
		return after
	}
	return before
}
