package service

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateLink       = errors.New("link already exists")
	ErrDuplicateMembership = errors.New("link already in collection")
	ErrUserExists          = errors.New("user with this email already exists")
	ErrPasswordNotMatch    = errors.New("old password does not match")
	ErrResetLinkExpired    = errors.New("password reset link expired")

	ErrLoginUserNotFound         = errors.New("user not found")
	ErrLoginPasswordDoesNotMatch = errors.New("password does not match")
)
