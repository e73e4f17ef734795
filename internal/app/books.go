package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstore/pkg/domain"
	"bookstore/pkg/store"
)

const (
	maxTitleLen      = 100
	maxAuthorLen     = 50
	minRank          = 1
	maxRank          = 10
	maxBookCategories = 3
)

// BookInput carries the caller-supplied fields for create and update.
// A nil UploadDate means "default it" on create and "keep the stored value"
// on update.
type BookInput struct {
	Title      string
	Author     string
	UploadDate *time.Time
	Rank       int
	Categories []string
}

func validateBookInput(in BookInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return validationErr("title is required")
	}
	if len(in.Title) > maxTitleLen {
		return validationErr("title must be at most %d characters", maxTitleLen)
	}
	if strings.TrimSpace(in.Author) == "" {
		return validationErr("author is required")
	}
	if len(in.Author) > maxAuthorLen {
		return validationErr("author must be at most %d characters", maxAuthorLen)
	}
	if in.Rank < minRank || in.Rank > maxRank {
		return validationErr("rank must be between %d and %d", minRank, maxRank)
	}
	if len(in.Categories) == 0 || len(in.Categories) > maxBookCategories {
		return validationErr("a book requires between 1 and %d categories", maxBookCategories)
	}
	for _, label := range in.Categories {
		if !domain.IsCategory(label) {
			return validationErr("category %q is not allowed", label)
		}
	}
	return nil
}

// CreateBook validates the input and stores a standalone book.
func (a *App) CreateBook(in BookInput) (domain.Book, error) {
	if err := validateBookInput(in); err != nil {
		return domain.Book{}, err
	}
	book, err := a.store.CreateBook(bookFromInput(in))
	if err != nil {
		return domain.Book{}, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// CreateBookForUser stores the book and puts it on the user's shelf in one
// atomic unit.
func (a *App) CreateBookForUser(in BookInput, userID int64) (domain.Book, error) {
	if err := validateBookInput(in); err != nil {
		return domain.Book{}, err
	}
	book, err := a.store.CreateBookForUser(bookFromInput(in), userID)
	if err != nil {
		return domain.Book{}, fmt.Errorf("create book for user: %w", err)
	}
	return book, nil
}

// AddBookToShelf puts an existing catalog book on the user's shelf.
// A book already on the shelf is a conflict, surfaced as
// store.ErrOwnershipExists.
func (a *App) AddBookToShelf(bookID, userID int64) error {
	_, ok, err := a.store.GetBook(bookID)
	if err != nil {
		return fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if err := a.store.AddOwnership(userID, bookID); err != nil {
		if errors.Is(err, store.ErrOwnershipExists) {
			return err
		}
		return fmt.Errorf("add ownership: %w", err)
	}
	return nil
}

// GetBook returns a book or ErrNotFound.
func (a *App) GetBook(id int64) (domain.Book, error) {
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return domain.Book{}, ErrNotFound
	}
	return book, nil
}

// ListBooks returns the whole catalog regardless of ownership.
func (a *App) ListBooks() ([]domain.Book, error) {
	return a.store.ListBooks()
}

// ListBooksForUser returns the caller's shelf.
func (a *App) ListBooksForUser(userID int64) ([]domain.Book, error) {
	return a.store.ListBooksByOwner(userID)
}

// UpdateBook replaces every mutable field of the book. When UploadDate is
// omitted the stored value is kept.
func (a *App) UpdateBook(id int64, in BookInput) error {
	if err := validateBookInput(in); err != nil {
		return err
	}
	existing, ok, err := a.store.GetBook(id)
	if err != nil {
		return fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	book := bookFromInput(in)
	book.ID = id
	if in.UploadDate == nil {
		book.UploadDate = existing.UploadDate
	}
	updated, err := a.store.UpdateBook(book)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

// DeleteBook removes the book together with all its ownership rows.
func (a *App) DeleteBook(id int64) error {
	deleted, err := a.store.DeleteBook(id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// SearchBooks matches the term against title or author across the catalog.
func (a *App) SearchBooks(term string) ([]domain.Book, error) {
	if strings.TrimSpace(term) == "" {
		return nil, validationErr("Search term cannot be empty.")
	}
	return a.store.SearchBooks(term)
}

// SearchBooksForUser restricts the search to the caller's shelf.
func (a *App) SearchBooksForUser(term string, userID int64) ([]domain.Book, error) {
	if strings.TrimSpace(term) == "" {
		return nil, validationErr("Search term cannot be empty.")
	}
	return a.store.SearchBooksByOwner(term, userID)
}

func bookFromInput(in BookInput) domain.Book {
	uploadDate := time.Now().UTC()
	if in.UploadDate != nil {
		uploadDate = in.UploadDate.UTC()
	}
	return domain.Book{
		Title:      in.Title,
		Author:     in.Author,
		UploadDate: uploadDate,
		Rank:       in.Rank,
		Categories: append([]string(nil), in.Categories...),
	}
}
