package models

import "time"

// Blog is a bookmarked blog post. OwnerID is fixed at creation.
type Blog struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	URL       string    `json:"url" gorm:"type:varchar(2048);not null"`
	Author    string    `json:"author,omitempty" gorm:"type:varchar(255)"`
	Likes     int       `json:"likes" gorm:"not null;default:0"`
	OwnerID   string    `json:"ownerId" gorm:"type:varchar(36);index;not null"`
	Owner     *User     `json:"user,omitempty" gorm:"foreignKey:OwnerID"`
	CreatedAt time.Time `json:"-" gorm:"index"`
	UpdatedAt time.Time `json:"-"`
}
