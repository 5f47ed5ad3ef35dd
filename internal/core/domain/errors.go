package domain

import "errors"

var (
	// Чтение из бэкенда не удалось, частичное состояние не применяется
	ErrFetchFailed = errors.New("fetch failed")
	// Вставка записи не удалась, уведомление не отправляется
	ErrWriteFailed = errors.New("write failed")
	// Уведомление не ушло, только логируется
	ErrNotificationFailed = errors.New("notification failed")

	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
