package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrVoteNotFound       = errors.New("vote not found")
	ErrVoteClosed         = errors.New("vote is closed")
	ErrInvalidSelection   = errors.New("menu is not part of this vote")
	ErrActiveVoteExists   = errors.New("another vote is still active")
	ErrForbidden          = errors.New("caller is not allowed to perform this action")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrBadCredentials     = errors.New("invalid email or password")
	ErrSubscriptionGone   = errors.New("push subscription no longer valid")
	ErrInternal           = errors.New("internal server error")
)
