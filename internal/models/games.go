package models

import "time"

const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// Game is a catalog entry for a mobile application.
type Game struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PublisherID string    `json:"publisherId" gorm:"size:255"`
	Name        string    `json:"name" gorm:"size:255;index"`
	Platform    string    `json:"platform" gorm:"size:32;index"`
	StoreID     string    `json:"storeId" gorm:"size:255"`
	BundleID    string    `json:"bundleId" gorm:"size:255"`
	AppVersion  string    `json:"appVersion" gorm:"size:64"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Game) TableName() string {
	return "games"
}

// SearchFilter narrows a listing; nil or empty fields match everything.
type SearchFilter struct {
	Name     *string `json:"name,omitempty"`
	Platform *string `json:"platform,omitempty"`
}

// GameChanges carries the fields of an update request. Only non-nil fields
// are written.
type GameChanges struct {
	PublisherID *string `json:"publisherId,omitempty"`
	Name        *string `json:"name,omitempty"`
	Platform    *string `json:"platform,omitempty"`
	StoreID     *string `json:"storeId,omitempty"`
	BundleID    *string `json:"bundleId,omitempty"`
	AppVersion  *string `json:"appVersion,omitempty"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// Columns maps the supplied fields to column names, keeping zero values.
func (c GameChanges) Columns() map[string]any {
	cols := make(map[string]any)

	if c.PublisherID != nil {
		cols["publisher_id"] = *c.PublisherID
	}
	if c.Name != nil {
		cols["name"] = *c.Name
	}
	if c.Platform != nil {
		cols["platform"] = *c.Platform
	}
	if c.StoreID != nil {
		cols["store_id"] = *c.StoreID
	}
	if c.BundleID != nil {
		cols["bundle_id"] = *c.BundleID
	}
	if c.AppVersion != nil {
		cols["app_version"] = *c.AppVersion
	}
	if c.IsPublished != nil {
		cols["is_published"] = *c.IsPublished
	}

	return cols
}
