package models

// Application is the persisted identity of a tracked program. Name is the
// stable identity key; Path is the last-known executable location and is
// updated in place when it changes.
type Application struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
	Path string `gorm:"not null" json:"path"`
	Icon []byte `json:"icon,omitempty"`
}
