package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrUnknownJenis       = errors.New("unknown jenis arsip")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
