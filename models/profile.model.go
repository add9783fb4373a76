package models

import (
	"time"
)

// Profile mirrors the identity provider's user record. It is consumed
// read-only at issuance time to snapshot the holder's display name.
type Profile struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"type:varchar(64);uniqueIndex;not null" json:"userId"`
	FullName  string `gorm:"type:varchar(255)" json:"fullName"`
	Email     string `gorm:"type:varchar(255);index" json:"email"`
	Age       *int   `json:"age"`
	Gender    string `gorm:"type:varchar(20)" json:"gender"`
	Role      string `gorm:"type:varchar(20);default:'USER'" json:"role"` // USER, ADMIN
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Profile) TableName() string {
	return "profiles"
}
