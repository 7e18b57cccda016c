package model

import "time"

type Post struct {
	ID        uint64    `gorm:"primaryKey;index:idx_post_time_id,priority:2,sort:desc"`
	Text      string    `gorm:"type:text;not null"`
	AuthorID  uint64    `gorm:"not null;index:idx_post_author_time,priority:1"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE"`
	GroupID   *uint64   `gorm:"index:idx_post_group_time,priority:1"`
	Group     *Group    `gorm:"constraint:OnDelete:RESTRICT"`
	Image     string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index:idx_post_time_id,priority:1,sort:desc;index:idx_post_author_time,priority:2;index:idx_post_group_time,priority:2"`
}

// HasImage reports whether an attachment is stored for the post.
func (p Post) HasImage() bool {
	return p.Image != ""
}
