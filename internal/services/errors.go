package services

import "errors"

var (
	ErrUnknown        = errors.New("[service]: unknown error")
	ErrRecordNotFound = errors.New("[service]: record not found")
	ErrConflict       = errors.New("[service]: alias already taken")
	ErrValidation     = errors.New("[service]: validation error")
	ErrExpired        = errors.New("[service]: link expired")
)
