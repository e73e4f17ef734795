package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookstore/pkg/domain"
)

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens a Postgres database and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return NewGormStoreFromDB(db)
}

// NewGormStoreFromDB wraps an already-open connection. Tests use this with
// an in-memory SQLite database.
func NewGormStoreFromDB(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&UserModel{}, &BookModel{}, &OwnershipModel{}, &SharedBookListModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// CreateUser inserts a user and returns it with the generated ID.
func (s *GormStore) CreateUser(u domain.User) (domain.User, error) {
	model := userToModel(u)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.User{}, err
	}
	return userFromModel(model), nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id int64) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByUsername looks up a user by username.
func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("username = ?", username).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListUsers returns all users ordered by creation time.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// UpdateUser replaces username and password hash. Returns false when the
// user does not exist.
func (s *GormStore) UpdateUser(u domain.User) (bool, error) {
	result := s.db.Model(&UserModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"username":      u.Username,
			"password_hash": u.PasswordHash,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateBook inserts a standalone book.
func (s *GormStore) CreateBook(b domain.Book) (domain.Book, error) {
	model, err := bookToModel(b)
	if err != nil {
		return domain.Book{}, err
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Book{}, err
	}
	return bookFromModel(model)
}

// CreateBookForUser inserts the book and its ownership row atomically.
func (s *GormStore) CreateBookForUser(b domain.Book, userID int64) (domain.Book, error) {
	model, err := bookToModel(b)
	if err != nil {
		return domain.Book{}, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		own := OwnershipModel{UserID: userID, BookID: model.ID}
		return tx.Create(&own).Error
	})
	if err != nil {
		return domain.Book{}, err
	}
	return bookFromModel(model)
}

// GetBook retrieves a book by ID.
func (s *GormStore) GetBook(id int64) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	book, err := bookFromModel(model)
	if err != nil {
		return domain.Book{}, false, err
	}
	return book, true, nil
}

// GetBooksByIDs fetches existing books once each, ordered by first reference.
func (s *GormStore) GetBooksByIDs(ids []int64) ([]domain.Book, error) {
	if len(ids) == 0 {
		return []domain.Book{}, nil
	}
	var models []BookModel
	if err := s.db.Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]BookModel, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}
	res := make([]domain.Book, 0, len(models))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		m, ok := byID[id]
		if !ok {
			continue
		}
		book, err := bookFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, book)
	}
	return res, nil
}

// ListBooks returns every book in the catalog ordered by ID.
func (s *GormStore) ListBooks() ([]domain.Book, error) {
	var models []BookModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return booksFromModels(models)
}

// ListBooksByOwner returns the books on a user's shelf.
func (s *GormStore) ListBooksByOwner(userID int64) ([]domain.Book, error) {
	var models []BookModel
	err := s.db.
		Joins("JOIN ownership_models ON ownership_models.book_id = book_models.id").
		Where("ownership_models.user_id = ?", userID).
		Order("book_models.id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return booksFromModels(models)
}

// UpdateBook overwrites all mutable fields. Returns false when the book
// does not exist.
func (s *GormStore) UpdateBook(b domain.Book) (bool, error) {
	categories, err := json.Marshal(b.Categories)
	if err != nil {
		return false, fmt.Errorf("marshal categories: %w", err)
	}
	result := s.db.Model(&BookModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"title":       b.Title,
			"author":      b.Author,
			"upload_date": b.UploadDate,
			"rank":        b.Rank,
			"categories":  categories,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteBook removes the book and its ownership rows in one transaction.
func (s *GormStore) DeleteBook(id int64) (bool, error) {
	found := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&OwnershipModel{}, "book_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&BookModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		found = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// likeEscaper neutralizes LIKE metacharacters so a search term always
// matches as a literal substring.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// SearchBooks matches the term case-insensitively against title or author.
func (s *GormStore) SearchBooks(term string) ([]domain.Book, error) {
	var models []BookModel
	pattern := likePattern(term)
	err := s.db.
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return booksFromModels(models)
}

// SearchBooksByOwner restricts the search to a user's shelf.
func (s *GormStore) SearchBooksByOwner(term string, userID int64) ([]domain.Book, error) {
	var models []BookModel
	pattern := likePattern(term)
	err := s.db.
		Joins("JOIN ownership_models ON ownership_models.book_id = book_models.id").
		Where("ownership_models.user_id = ?", userID).
		Where(`LOWER(book_models.title) LIKE ? ESCAPE '\' OR LOWER(book_models.author) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("book_models.id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return booksFromModels(models)
}

// AddOwnership links the user to the book, rejecting duplicate pairs.
func (s *GormStore) AddOwnership(userID, bookID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&OwnershipModel{}).
			Where("user_id = ? AND book_id = ?", userID, bookID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrOwnershipExists
		}
		own := OwnershipModel{UserID: userID, BookID: bookID}
		return tx.Create(&own).Error
	})
}

// CreateSharedList persists a shared list verbatim.
func (s *GormStore) CreateSharedList(list domain.SharedBookList) error {
	model, err := sharedListToModel(list)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetSharedList returns a shared list by its capability ID.
func (s *GormStore) GetSharedList(id string) (domain.SharedBookList, bool, error) {
	var model SharedBookListModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.SharedBookList{}, false, nil
		}
		return domain.SharedBookList{}, false, err
	}
	list, err := sharedListFromModel(model)
	if err != nil {
		return domain.SharedBookList{}, false, err
	}
	return list, true, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func bookToModel(b domain.Book) (BookModel, error) {
	categories, err := json.Marshal(b.Categories)
	if err != nil {
		return BookModel{}, fmt.Errorf("marshal categories: %w", err)
	}
	return BookModel{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		UploadDate: b.UploadDate,
		Rank:       b.Rank,
		Categories: categories,
	}, nil
}

func bookFromModel(m BookModel) (domain.Book, error) {
	var categories []string
	if len(m.Categories) > 0 {
		if err := json.Unmarshal(m.Categories, &categories); err != nil {
			return domain.Book{}, fmt.Errorf("unmarshal categories: %w", err)
		}
	}
	return domain.Book{
		ID:         m.ID,
		Title:      m.Title,
		Author:     m.Author,
		UploadDate: m.UploadDate,
		Rank:       m.Rank,
		Categories: categories,
	}, nil
}

func booksFromModels(models []BookModel) ([]domain.Book, error) {
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		book, err := bookFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, book)
	}
	return res, nil
}

func sharedListToModel(list domain.SharedBookList) (SharedBookListModel, error) {
	ids, err := json.Marshal(list.BookIDs)
	if err != nil {
		return SharedBookListModel{}, fmt.Errorf("marshal book ids: %w", err)
	}
	return SharedBookListModel{
		ID:        list.ID,
		BookIDs:   ids,
		CreatedAt: list.CreatedAt,
	}, nil
}

func sharedListFromModel(m SharedBookListModel) (domain.SharedBookList, error) {
	var ids []int64
	if len(m.BookIDs) > 0 {
		if err := json.Unmarshal(m.BookIDs, &ids); err != nil {
			return domain.SharedBookList{}, fmt.Errorf("unmarshal book ids: %w", err)
		}
	}
	return domain.SharedBookList{
		ID:        m.ID,
		BookIDs:   ids,
		CreatedAt: m.CreatedAt,
	}, nil
}
