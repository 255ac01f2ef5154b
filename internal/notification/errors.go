package notification

import "errors"

var (
	// ErrRender возвращается при ошибке рендеринга шаблона письма
	ErrRender = errors.New("notification: failed to render message")

	// ErrUnknownEvent возвращается для события без шаблона
	ErrUnknownEvent = errors.New("notification: unknown event")

	// ErrNoOperator возвращается, когда адрес оператора не настроен
	ErrNoOperator = errors.New("notification: operator email is not configured")
)
