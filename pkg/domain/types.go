package domain

import "time"

// Book is a catalog entry in a user's collection.
type Book struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	UploadDate time.Time `json:"uploadDate"`
	Rank       int       `json:"rank"`
	Categories []string  `json:"categories"`
}

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Ownership links a user to a book on their shelf.
// At most one row exists per (UserID, BookID) pair.
type Ownership struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`
	BookID int64 `json:"bookId"`
}

// SharedBookList is an immutable, capability-addressed list of book IDs.
// The ID doubles as the access token: holding it grants read access.
type SharedBookList struct {
	ID        string    `json:"id"`
	BookIDs   []int64   `json:"bookIds"`
	CreatedAt time.Time `json:"createdAt"`
}
