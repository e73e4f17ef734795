package store

import (
	"strings"
	"sync"
	"time"

	"bookstore/pkg/domain"
)

// MemoryStore keeps everything in-process. Tests use it so that the app and
// server layers can be exercised without a database.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[int64]domain.User
	books      map[int64]domain.Book
	ownerships map[int64]domain.Ownership
	lists      map[string]domain.SharedBookList
	userOrder  []int64
	bookOrder  []int64
	nextUser   int64
	nextBook   int64
	nextOwn    int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]domain.User),
		books:      make(map[int64]domain.Book),
		ownerships: make(map[int64]domain.Ownership),
		lists:      make(map[string]domain.SharedBookList),
	}
}

// CreateUser stores a user and assigns the next sequential ID.
func (m *MemoryStore) CreateUser(u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUser++
	u.ID = m.nextUser
	m.users[u.ID] = u
	m.userOrder = append(m.userOrder, u.ID)
	return u, nil
}

// GetUserByID retrieves a user by ID.
func (m *MemoryStore) GetUserByID(id int64) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByUsername retrieves a user by username.
func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok && u.Username == username {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

// ListUsers returns users in registration order.
func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

// UpdateUser replaces a stored user in place.
func (m *MemoryStore) UpdateUser(u domain.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.ID]
	if !ok {
		return false, nil
	}
	existing.Username = u.Username
	existing.PasswordHash = u.PasswordHash
	existing.UpdatedAt = time.Now().UTC()
	m.users[u.ID] = existing
	return true, nil
}

// CreateBook stores a book and assigns the next sequential ID.
func (m *MemoryStore) CreateBook(b domain.Book) (domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createBookLocked(b), nil
}

// CreateBookForUser stores the book and the ownership row together.
func (m *MemoryStore) CreateBookForUser(b domain.Book, userID int64) (domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	book := m.createBookLocked(b)
	m.nextOwn++
	m.ownerships[m.nextOwn] = domain.Ownership{ID: m.nextOwn, UserID: userID, BookID: book.ID}
	return book, nil
}

func (m *MemoryStore) createBookLocked(b domain.Book) domain.Book {
	m.nextBook++
	b.ID = m.nextBook
	b.Categories = append([]string(nil), b.Categories...)
	m.books[b.ID] = b
	m.bookOrder = append(m.bookOrder, b.ID)
	return b
}

// GetBook retrieves a book by ID.
func (m *MemoryStore) GetBook(id int64) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok, nil
}

// GetBooksByIDs returns existing books once each, ordered by first reference.
func (m *MemoryStore) GetBooksByIDs(ids []int64) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if b, ok := m.books[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// ListBooks returns books in insertion order.
func (m *MemoryStore) ListBooks() ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.bookOrder))
	for _, id := range m.bookOrder {
		if b, ok := m.books[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// ListBooksByOwner returns the books on a user's shelf in insertion order.
func (m *MemoryStore) ListBooksByOwner(userID int64) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owned := m.ownedSetLocked(userID)
	res := make([]domain.Book, 0, len(owned))
	for _, id := range m.bookOrder {
		if _, ok := owned[id]; !ok {
			continue
		}
		if b, ok := m.books[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// UpdateBook replaces a stored book in place.
func (m *MemoryStore) UpdateBook(b domain.Book) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return false, nil
	}
	b.Categories = append([]string(nil), b.Categories...)
	m.books[b.ID] = b
	return true, nil
}

// DeleteBook removes the book and every ownership row referencing it.
func (m *MemoryStore) DeleteBook(id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return false, nil
	}
	delete(m.books, id)
	for ownID, own := range m.ownerships {
		if own.BookID == id {
			delete(m.ownerships, ownID)
		}
	}
	filtered := m.bookOrder[:0]
	for _, item := range m.bookOrder {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.bookOrder = filtered
	return true, nil
}

// SearchBooks matches the term case-insensitively against title or author.
func (m *MemoryStore) SearchBooks(term string) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.searchLocked(term, nil), nil
}

// SearchBooksByOwner restricts the search to a user's shelf.
func (m *MemoryStore) SearchBooksByOwner(term string, userID int64) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owned := m.ownedSetLocked(userID)
	return m.searchLocked(term, owned), nil
}

func (m *MemoryStore) searchLocked(term string, owned map[int64]struct{}) []domain.Book {
	needle := strings.ToLower(term)
	res := make([]domain.Book, 0)
	for _, id := range m.bookOrder {
		if owned != nil {
			if _, ok := owned[id]; !ok {
				continue
			}
		}
		b, ok := m.books[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle) {
			res = append(res, b)
		}
	}
	return res
}

func (m *MemoryStore) ownedSetLocked(userID int64) map[int64]struct{} {
	owned := make(map[int64]struct{})
	for _, own := range m.ownerships {
		if own.UserID == userID {
			owned[own.BookID] = struct{}{}
		}
	}
	return owned
}

// AddOwnership links the user to the book, rejecting duplicate pairs.
func (m *MemoryStore) AddOwnership(userID, bookID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, own := range m.ownerships {
		if own.UserID == userID && own.BookID == bookID {
			return ErrOwnershipExists
		}
	}
	m.nextOwn++
	m.ownerships[m.nextOwn] = domain.Ownership{ID: m.nextOwn, UserID: userID, BookID: bookID}
	return nil
}

// CreateSharedList persists a shared list verbatim.
func (m *MemoryStore) CreateSharedList(list domain.SharedBookList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list.BookIDs = append([]int64(nil), list.BookIDs...)
	m.lists[list.ID] = list
	return nil
}

// GetSharedList returns a shared list by its capability ID.
func (m *MemoryStore) GetSharedList(id string) (domain.SharedBookList, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list, ok := m.lists[id]
	return list, ok, nil
}
