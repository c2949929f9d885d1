package models

// FocusEvent is an immutable record of a focus transition. CreatedAt is
// epoch seconds; it is filled at insert time unless the caller supplies
// a value (the synthetic closing event does).
type FocusEvent struct {
	ID          int64        `gorm:"primaryKey" json:"id"`
	AppID       int64        `gorm:"not null;index" json:"app_id"`
	App         *Application `gorm:"foreignKey:AppID" json:"-"`
	WindowTitle string       `gorm:"not null" json:"window_title"`
	EventKind   string       `gorm:"not null" json:"event_kind"`
	CreatedAt   int64        `gorm:"not null;index" json:"created_at"`
}

// EventRecord is a focus event joined with its application name, the row
// shape returned by range queries.
type EventRecord struct {
	AppID       int64  `json:"app_id"`
	AppName     string `json:"app_name"`
	WindowTitle string `json:"window_title"`
	EventKind   string `json:"event_kind"`
	CreatedAt   int64  `json:"created_at"`
}
