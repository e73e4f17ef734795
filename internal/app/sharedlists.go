package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookstore/pkg/domain"
)

// CreateSharedList validates that every referenced book exists, then
// persists the ids verbatim under a fresh random capability ID. Duplicate
// ids are kept as supplied.
func (a *App) CreateSharedList(bookIDs []int64) (domain.SharedBookList, error) {
	for _, id := range bookIDs {
		_, ok, err := a.store.GetBook(id)
		if err != nil {
			return domain.SharedBookList{}, fmt.Errorf("fetch book: %w", err)
		}
		if !ok {
			return domain.SharedBookList{}, validationErr("Book with ID %d does not exist", id)
		}
	}
	list := domain.SharedBookList{
		ID:        uuid.NewString(),
		BookIDs:   append([]int64(nil), bookIDs...),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.CreateSharedList(list); err != nil {
		return domain.SharedBookList{}, fmt.Errorf("create shared list: %w", err)
	}
	return list, nil
}

// ResolveSharedList re-reads the current state of every referenced book.
// Books deleted since the list was minted are silently absent; an empty
// result is still a successful resolution.
func (a *App) ResolveSharedList(listID string) ([]domain.Book, error) {
	list, ok, err := a.store.GetSharedList(listID)
	if err != nil {
		return nil, fmt.Errorf("fetch shared list: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	books, err := a.store.GetBooksByIDs(list.BookIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch shared books: %w", err)
	}
	return books, nil
}
