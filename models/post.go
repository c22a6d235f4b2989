package models

import "time"

// Post represents a published article on the blog.
//
// Slug is the public lookup key for the detail page and is expected to be
// unique; duplicate slugs make the detail lookup return whichever row the
// database yields first. CreatedAt is overwritten on every edit, so it is
// effectively a last-modified timestamp.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Subtitle    string    `gorm:"size:100;not null" json:"subtitle"`
	Slug        string    `gorm:"size:50;not null;index" json:"slug"`
	Content     string    `gorm:"size:1000;not null" json:"content"`
	ThumbImgURL string    `gorm:"size:50" json:"thumb_img_url"`
	CreatedAt   time.Time `json:"created_at"`
}
