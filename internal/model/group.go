package model

import "time"

// Group is a thematic category a post may belong to. Slug is part of public
// URLs and is never rewritten after creation.
type Group struct {
	ID          uint64 `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"uniqueIndex;size:64;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
}
