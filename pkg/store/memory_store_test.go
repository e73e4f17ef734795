package store

import (
	"errors"
	"testing"
	"time"

	"bookstore/pkg/domain"
)

func memBook(t *testing.T, m *MemoryStore, title, author string) domain.Book {
	t.Helper()
	book, err := m.CreateBook(domain.Book{
		Title:      title,
		Author:     author,
		UploadDate: time.Now().UTC(),
		Rank:       5,
		Categories: []string{"Drama"},
	})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	return book
}

func TestMemoryStoreSearchTreatsWildcardsLiterally(t *testing.T) {
	m := NewMemoryStore()

	memBook(t, m, "Plain Title", "Author A")
	percent := memBook(t, m, "100% Wool", "Author B")
	underscore := memBook(t, m, "snake_case naming", "Author C")

	got, err := m.SearchBooks("%")
	if err != nil {
		t.Fatalf("search percent: %v", err)
	}
	if len(got) != 1 || got[0].ID != percent.ID {
		t.Fatalf("%% must match literally, got %+v", got)
	}

	got, err = m.SearchBooks("_")
	if err != nil {
		t.Fatalf("search underscore: %v", err)
	}
	if len(got) != 1 || got[0].ID != underscore.ID {
		t.Fatalf("_ must match literally, got %+v", got)
	}
}

func TestMemoryStoreAddOwnership(t *testing.T) {
	m := NewMemoryStore()

	user, err := m.CreateUser(domain.User{Username: "alice", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	book := memBook(t, m, "Shelved", "Author A")

	if err := m.AddOwnership(user.ID, book.ID); err != nil {
		t.Fatalf("add ownership: %v", err)
	}
	if err := m.AddOwnership(user.ID, book.ID); !errors.Is(err, ErrOwnershipExists) {
		t.Fatalf("expected duplicate ownership error, got %v", err)
	}

	shelf, err := m.ListBooksByOwner(user.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(shelf) != 1 || shelf[0].ID != book.ID {
		t.Fatalf("expected shelved book, got %+v", shelf)
	}
}
