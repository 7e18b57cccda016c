package model

import "time"

// Follow is a directed edge: User follows Author. The pair is unique in
// storage so concurrent follow requests cannot create duplicates.
type Follow struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_follow_user_author,priority:1"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  uint64 `gorm:"not null;index:idx_follow_author;uniqueIndex:uk_follow_user_author,priority:2"`
	Author    User   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// TableName sets table name for Follow
func (Follow) TableName() string {
	return "follows"
}
