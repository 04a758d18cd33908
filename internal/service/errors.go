package service

import (
	"errors"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrEmailTaken          = errors.New("email already exists")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrEmptyMessage        = errors.New("message content is empty")
	ErrMessageTooLong      = errors.New("message content too long")
	ErrInvalidRecipient    = errors.New("invalid recipient")
	ErrBookmarkExists      = errors.New("document already bookmarked")
	ErrSuggestDisabled     = errors.New("precedent suggestions are not configured")

	// ErrMissingEmbeddings is the navigator's sentinel so errors.Is works on
	// both sides of the wire.
	ErrMissingEmbeddings = caselaw.ErrMissingEmbeddings
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
