package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bookstore/pkg/store"
)

func TestCreateBookRejectsBadInput(t *testing.T) {
	appCore, _ := newTestApp(t)

	cases := []struct {
		name   string
		mutate func(*BookInput)
	}{
		{"empty title", func(in *BookInput) { in.Title = "  " }},
		{"title too long", func(in *BookInput) { in.Title = strings.Repeat("x", 101) }},
		{"empty author", func(in *BookInput) { in.Author = "" }},
		{"author too long", func(in *BookInput) { in.Author = strings.Repeat("y", 51) }},
		{"rank too low", func(in *BookInput) { in.Rank = 0 }},
		{"rank too high", func(in *BookInput) { in.Rank = 11 }},
		{"no categories", func(in *BookInput) { in.Categories = nil }},
		{"too many categories", func(in *BookInput) {
			in.Categories = []string{"Drama", "Horror", "Mystery", "Romance"}
		}},
		{"unknown category", func(in *BookInput) { in.Categories = []string{"Cooking"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validBook()
			tc.mutate(&in)
			_, err := appCore.CreateBook(in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateBookDefaultsUploadDate(t *testing.T) {
	appCore, _ := newTestApp(t)

	before := time.Now().UTC().Add(-time.Second)
	book, err := appCore.CreateBook(validBook())
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	if book.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if book.UploadDate.Before(before) {
		t.Fatalf("upload date not defaulted: %v", book.UploadDate)
	}
}

func TestCreateBookForUserAddsToShelf(t *testing.T) {
	appCore, _ := newTestApp(t)

	owner, err := appCore.Register("owner", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	other, err := appCore.Register("other", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	book, err := appCore.CreateBookForUser(validBook(), owner.ID)
	if err != nil {
		t.Fatalf("create book for user: %v", err)
	}

	shelf, err := appCore.ListBooksForUser(owner.ID)
	if err != nil {
		t.Fatalf("list shelf: %v", err)
	}
	if len(shelf) != 1 || shelf[0].ID != book.ID {
		t.Fatalf("expected book on owner shelf, got %+v", shelf)
	}

	empty, err := appCore.ListBooksForUser(other.ID)
	if err != nil {
		t.Fatalf("list shelf: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty shelf for other user, got %+v", empty)
	}
}

func TestUpdateBookKeepsUploadDateWhenOmitted(t *testing.T) {
	appCore, _ := newTestApp(t)

	when := time.Date(2020, time.March, 14, 0, 0, 0, 0, time.UTC)
	in := validBook()
	in.UploadDate = &when
	book, err := appCore.CreateBook(in)
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	update := validBook()
	update.Title = "Renamed"
	if err := appCore.UpdateBook(book.ID, update); err != nil {
		t.Fatalf("update book: %v", err)
	}

	got, err := appCore.GetBook(book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.Title != "Renamed" {
		t.Fatalf("title not updated: %q", got.Title)
	}
	if !got.UploadDate.Equal(when) {
		t.Fatalf("upload date changed: %v", got.UploadDate)
	}
}

func TestUpdateBookUnknownID(t *testing.T) {
	appCore, _ := newTestApp(t)
	if err := appCore.UpdateBook(4242, validBook()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteBookCascadesOwnership(t *testing.T) {
	appCore, _ := newTestApp(t)

	owner, err := appCore.Register("owner", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	book, err := appCore.CreateBookForUser(validBook(), owner.ID)
	if err != nil {
		t.Fatalf("create book for user: %v", err)
	}

	if err := appCore.DeleteBook(book.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if _, err := appCore.GetBook(book.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	shelf, err := appCore.ListBooksForUser(owner.ID)
	if err != nil {
		t.Fatalf("list shelf: %v", err)
	}
	if len(shelf) != 0 {
		t.Fatalf("expected ownership removed, got %+v", shelf)
	}

	if err := appCore.DeleteBook(book.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}

func TestSearchBooksRejectsBlankTerm(t *testing.T) {
	appCore, _ := newTestApp(t)
	for _, term := range []string{"", "   "} {
		_, err := appCore.SearchBooks(term)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("term %q: expected validation error, got %v", term, err)
		}
		if err.Error() != "Search term cannot be empty." {
			t.Fatalf("term %q: unexpected message %q", term, err.Error())
		}
	}
}

func TestSearchBooksForUserScopedToShelf(t *testing.T) {
	appCore, _ := newTestApp(t)

	owner, err := appCore.Register("owner", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	mine := validBook()
	mine.Title = "Dune Messiah"
	if _, err := appCore.CreateBookForUser(mine, owner.ID); err != nil {
		t.Fatalf("create book for user: %v", err)
	}
	stray := validBook()
	stray.Title = "Dune"
	if _, err := appCore.CreateBook(stray); err != nil {
		t.Fatalf("create book: %v", err)
	}

	got, err := appCore.SearchBooksForUser("dune", owner.ID)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Dune Messiah" {
		t.Fatalf("expected only the owned match, got %+v", got)
	}

	byAuthor, err := appCore.SearchBooksForUser("ada", owner.ID)
	if err != nil {
		t.Fatalf("search by author: %v", err)
	}
	if len(byAuthor) != 1 {
		t.Fatalf("expected author match, got %+v", byAuthor)
	}
}

func TestAddBookToShelf(t *testing.T) {
	appCore, _ := newTestApp(t)

	alice, err := appCore.Register("alice", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	bob, err := appCore.Register("bob", "pass123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	book, err := appCore.CreateBookForUser(validBook(), alice.ID)
	if err != nil {
		t.Fatalf("create book for user: %v", err)
	}

	if err := appCore.AddBookToShelf(book.ID, bob.ID); err != nil {
		t.Fatalf("add book to shelf: %v", err)
	}
	shelf, err := appCore.ListBooksForUser(bob.ID)
	if err != nil {
		t.Fatalf("list shelf: %v", err)
	}
	if len(shelf) != 1 || shelf[0].ID != book.ID {
		t.Fatalf("expected shared book on shelf, got %+v", shelf)
	}

	if err := appCore.AddBookToShelf(book.ID, bob.ID); !errors.Is(err, store.ErrOwnershipExists) {
		t.Fatalf("expected ownership conflict, got %v", err)
	}
	if err := appCore.AddBookToShelf(9999, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown book, got %v", err)
	}
}
