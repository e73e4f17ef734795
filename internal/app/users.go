package app

import (
	"fmt"
	"strings"

	"bookstore/pkg/auth"
	"bookstore/pkg/domain"
)

const maxUsernameLen = 50

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return validationErr("username and password are required")
	}
	if len(username) > maxUsernameLen {
		return validationErr("username must be at most %d characters", maxUsernameLen)
	}
	return nil
}

// Register creates a new account. The password is stored as a bcrypt hash
// and never returned to the caller.
func (a *App) Register(username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return domain.User{}, err
	}
	_, taken, err := a.store.GetUserByUsername(username)
	if err != nil {
		return domain.User{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return domain.User{}, ErrUsernameTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := a.store.CreateUser(domain.User{Username: username, PasswordHash: hash})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks credentials and issues an identity token bound to the user.
// Unknown username and wrong password are indistinguishable to the caller.
func (a *App) Login(username, password string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	user, ok, err := a.store.GetUserByUsername(username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// GetUser returns a user or ErrNotFound.
func (a *App) GetUser(id int64) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return user, nil
}

// ListUsers returns all registered users.
func (a *App) ListUsers() ([]domain.User, error) {
	return a.store.ListUsers()
}

// UpdateUser replaces username and password. Renaming onto a username held
// by another account is a conflict.
func (a *App) UpdateUser(id int64, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return domain.User{}, err
	}
	existing, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrNotFound
	}
	if holder, found, err := a.store.GetUserByUsername(username); err != nil {
		return domain.User{}, fmt.Errorf("check username: %w", err)
	} else if found && holder.ID != id {
		return domain.User{}, ErrUsernameTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	existing.Username = username
	existing.PasswordHash = hash
	updated, err := a.store.UpdateUser(existing)
	if err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	if !updated {
		return domain.User{}, ErrNotFound
	}
	return a.GetUser(id)
}
