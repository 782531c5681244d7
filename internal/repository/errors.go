package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Typed outcomes the handlers translate into HTTP responses. Everything else
// coming out of a repository is a storage failure for that request.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrDealNotFound   = errors.New("deal not found")
	ErrShareNotFound  = errors.New("share not found")

	ErrSubdomainTaken   = errors.New("subdomain already taken")
	ErrInvalidSubdomain = errors.New("invalid subdomain")
	ErrDuplicateEmail   = errors.New("email already registered for tenant")

	ErrInvalidVote      = errors.New("vote value must be +1 or -1")
	ErrInvalidURL       = errors.New("destination must be an absolute URL")
	ErrInvalidAmount    = errors.New("point amount must be positive")
	ErrInvalidKind      = errors.New("unknown engagement kind")
	ErrInsufficientPoints = errors.New("insufficient points")
)

// isDuplicate reports whether err is the store's uniqueness-violation signal.
// With TranslateError enabled both the postgres and sqlite drivers map
// constraint violations onto gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// notFound reports whether err is gorm's empty-result signal.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
