package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound                = errors.New("entity not found")
	ErrAlreadyExists           = errors.New("entity already exists")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrInUse                   = errors.New("entity is referenced and cannot be deleted")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrUserBlocked             = errors.New("user is blocked")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrCheckoutInProgress      = errors.New("another checkout is already in progress")
	ErrInvalidExecContext      = errors.New("invalid executor context")
)
