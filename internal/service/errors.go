package service

import "errors"

// Sentinel errors mapped to API error codes by the handler layer.
var (
	ErrMissingFields      = errors.New("missing fields")
	ErrEmailExists        = errors.New("email already registered")
	ErrNickExists         = errors.New("nick already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrAccountBanned      = errors.New("account banned")
	ErrUserNotFound       = errors.New("user not found")

	ErrTokenNotFound = errors.New("token not found")
	ErrTokenUsed     = errors.New("token already used")
	ErrTokenExpired  = errors.New("token expired")

	ErrWrongStatus   = errors.New("wrong account status")
	ErrFilesRequired = errors.New("files required")

	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWithdrawNotFound  = errors.New("withdraw not found")
)
