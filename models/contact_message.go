package models

import "time"

// ContactMessage is a contact form submission. Rows are a write-only log:
// nothing in the application reads them back after creation.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:60;not null" json:"name"`
	Email     string    `gorm:"size:60;not null" json:"email"`
	PhoneNo   string    `gorm:"size:12;not null" json:"phone_no"`
	Message   string    `gorm:"size:120;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
