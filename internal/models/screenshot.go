package models

// Screenshot is one captured frame. Image holds encoded bytes in whatever
// container the capture side produced; the read path normalizes to PNG.
type Screenshot struct {
	ID        int64        `gorm:"primaryKey" json:"id"`
	AppID     int64        `gorm:"not null;index" json:"app_id"`
	App       *Application `gorm:"foreignKey:AppID" json:"-"`
	CreatedAt int64        `gorm:"not null;index" json:"created_at"`
	Image     []byte       `gorm:"not null" json:"png,omitempty"`
}
