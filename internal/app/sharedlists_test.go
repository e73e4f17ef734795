package app

import (
	"errors"
	"testing"
)

func TestCreateSharedListRejectsUnknownBook(t *testing.T) {
	appCore, _ := newTestApp(t)

	book, err := appCore.CreateBook(validBook())
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	_, err = appCore.CreateSharedList([]int64{book.ID, 777})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Book with ID 777 does not exist" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestSharedListRoundTrip(t *testing.T) {
	appCore, _ := newTestApp(t)

	first, err := appCore.CreateBook(validBook())
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	second := validBook()
	second.Title = "Another"
	secondBook, err := appCore.CreateBook(second)
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	list, err := appCore.CreateSharedList([]int64{secondBook.ID, first.ID})
	if err != nil {
		t.Fatalf("create shared list: %v", err)
	}
	if list.ID == "" {
		t.Fatalf("expected generated list id")
	}

	books, err := appCore.ResolveSharedList(list.ID)
	if err != nil {
		t.Fatalf("resolve shared list: %v", err)
	}
	if len(books) != 2 || books[0].ID != secondBook.ID || books[1].ID != first.ID {
		t.Fatalf("expected books in reference order, got %+v", books)
	}
}

func TestResolveSharedListSkipsDeletedBooks(t *testing.T) {
	appCore, _ := newTestApp(t)

	keep, err := appCore.CreateBook(validBook())
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	gone := validBook()
	gone.Title = "Ephemeral"
	goneBook, err := appCore.CreateBook(gone)
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	list, err := appCore.CreateSharedList([]int64{keep.ID, goneBook.ID})
	if err != nil {
		t.Fatalf("create shared list: %v", err)
	}
	if err := appCore.DeleteBook(goneBook.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}

	books, err := appCore.ResolveSharedList(list.ID)
	if err != nil {
		t.Fatalf("resolve shared list: %v", err)
	}
	if len(books) != 1 || books[0].ID != keep.ID {
		t.Fatalf("expected only surviving book, got %+v", books)
	}
}

func TestResolveSharedListUnknownID(t *testing.T) {
	appCore, _ := newTestApp(t)
	if _, err := appCore.ResolveSharedList("no-such-list"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateSharedListEmpty(t *testing.T) {
	appCore, _ := newTestApp(t)

	list, err := appCore.CreateSharedList(nil)
	if err != nil {
		t.Fatalf("create empty shared list: %v", err)
	}
	books, err := appCore.ResolveSharedList(list.ID)
	if err != nil {
		t.Fatalf("resolve shared list: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("expected empty resolution, got %+v", books)
	}
}
