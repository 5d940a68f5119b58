// Package apperr определяет типизированные ошибки уровня бизнес-логики.
// Каждая операция сервиса преобразует свои сбои в одну такую ошибку;
// транспортный слой единственным местом переводит Kind в HTTP-статус.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind — вид ошибки бизнес-логики.
type Kind int

// Виды ошибок и их соответствие транспортным статусам.
const (
	KindValidation Kind = iota
	KindUnauthorized
	KindForbidden
	KindSessionExpired
	KindConflict
	KindVerificationFailed
	KindPaymentRequired
	KindNotFound
	KindUpstream
)

// HTTPStatus возвращает HTTP-статус для данного вида ошибки.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict, KindVerificationFailed, KindPaymentRequired:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindSessionExpired:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error несёт вид ошибки, сообщение для клиента и исходную причину.
// Причина логируется на сервере и не попадает в ответ.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создает ошибку без исходной причины.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap создает ошибку, сохраняя исходную причину для логирования.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// From извлекает *Error из цепочки ошибок. Нетипизированные ошибки
// трактуются как внутренний сбой без деталей для клиента.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindUpstream, Msg: "internal service error", Err: err}
}

// IsKind сообщает, имеет ли ошибка данный вид.
func IsKind(err error, kind Kind) bool {
	return From(err).Kind == kind
}
