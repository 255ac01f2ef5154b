package eventbus

import "errors"

var (
	// ErrConnect возвращается, когда не удалось подключиться к брокеру или открыть канал
	ErrConnect = errors.New("eventbus: failed to connect to broker")

	// ErrPublish возвращается при ошибке объявления очереди или публикации
	ErrPublish = errors.New("eventbus: failed to publish event")
)
