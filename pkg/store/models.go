package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type BookModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Title      string `gorm:"size:100;not null"`
	Author     string `gorm:"size:50;not null"`
	UploadDate time.Time      `gorm:"not null"`
	Rank       int            `gorm:"not null"`
	Categories datatypes.JSON `gorm:"not null"`
}

type OwnershipModel struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	UserID int64 `gorm:"not null;uniqueIndex:idx_user_book"`
	BookID int64 `gorm:"not null;uniqueIndex:idx_user_book;index"`
}

type SharedBookListModel struct {
	ID        string         `gorm:"primaryKey"`
	BookIDs   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
