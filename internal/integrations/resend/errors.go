package resend

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("resend client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от API
	ErrInvalidResponse = errors.New("resend client: invalid response")

	// ErrRejected возвращается, когда API отклонило письмо (ошибка валидации, неверный ключ)
	ErrRejected = errors.New("resend client: email rejected")

	// ErrUnavailable возвращается при 429, 5xx ответах и сетевых ошибках; отправку можно повторить
	ErrUnavailable error = &temporaryError{msg: "resend client: service unavailable"}
)

// temporaryError ошибка, после которой повторная отправка имеет смысл
type temporaryError struct {
	msg string
}

func (e *temporaryError) Error() string {
	return e.msg
}

// Temporary сообщает вызывающей стороне, что запрос можно повторить
func (e *temporaryError) Temporary() bool {
	return true
}
