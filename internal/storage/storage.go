package storage

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrEmailExists         = errors.New("email already exists")
	ErrSessionCodeNotFound = errors.New("session code not found")
	ErrCharacterNotFound   = errors.New("character not found")
	ErrCharacterExists     = errors.New("character already exists")
	ErrNewsNotFound        = errors.New("news not found")
	ErrApplicationNotFound = errors.New("application not found")
)
