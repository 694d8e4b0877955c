package models

import "time"

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Name         string    `json:"name" gorm:"type:varchar(255)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Blogs        []Blog    `json:"blogs,omitempty" gorm:"foreignKey:OwnerID"` // owned blogs, oldest first
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// BlogIDs returns the ids of the blogs owned by the user, in creation order.
// Ownership is derived from Blog.OwnerID; it is never stored on the user row.
func (u *User) BlogIDs() []string {
	ids := make([]string, 0, len(u.Blogs))
	for _, b := range u.Blogs {
		ids = append(ids, b.ID)
	}
	return ids
}
