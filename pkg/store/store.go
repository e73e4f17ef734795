package store

import (
	"errors"

	"bookstore/pkg/domain"
)

// ErrOwnershipExists is returned when a (user, book) ownership row already
// exists. The pair is unique; re-adding is a conflict, not a no-op.
var ErrOwnershipExists = errors.New("user already owns this book")

// Store defines persistence operations for users, books, ownership rows,
// and shared book lists.
type Store interface {
	// users
	CreateUser(domain.User) (domain.User, error)
	GetUserByID(id int64) (domain.User, bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	UpdateUser(domain.User) (bool, error)

	// books
	CreateBook(domain.Book) (domain.Book, error)
	// CreateBookForUser inserts the book and its ownership row as one
	// atomic unit; neither survives if the other fails.
	CreateBookForUser(book domain.Book, userID int64) (domain.Book, error)
	GetBook(id int64) (domain.Book, bool, error)
	// GetBooksByIDs returns the books that still exist, once each, in the
	// order their ids first appear. Unknown ids are skipped.
	GetBooksByIDs(ids []int64) ([]domain.Book, error)
	ListBooks() ([]domain.Book, error)
	ListBooksByOwner(userID int64) ([]domain.Book, error)
	UpdateBook(domain.Book) (bool, error)
	// DeleteBook removes the book and every ownership row referencing it
	// in one transaction.
	DeleteBook(id int64) (bool, error)
	SearchBooks(term string) ([]domain.Book, error)
	SearchBooksByOwner(term string, userID int64) ([]domain.Book, error)

	// ownership
	AddOwnership(userID, bookID int64) error

	// shared lists
	CreateSharedList(domain.SharedBookList) error
	GetSharedList(id string) (domain.SharedBookList, bool, error)
}
