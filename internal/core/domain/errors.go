package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUsernameNotFound   = errors.New("username not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleNotFound       = errors.New("role not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

// UserNotFoundError carries the id that failed to resolve.
type UserNotFoundError struct {
	ID int64
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: id=%d", e.ID)
}

func (e *UserNotFoundError) Is(target error) bool {
	return target == ErrUserNotFound
}

// DuplicateUsernameError carries the username that is already taken.
type DuplicateUsernameError struct {
	Username string
}

func (e *DuplicateUsernameError) Error() string {
	return "username already exists: " + e.Username
}

func (e *DuplicateUsernameError) Is(target error) bool {
	return target == ErrDuplicateUsername
}
