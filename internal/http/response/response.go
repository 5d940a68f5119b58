// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Успешные ответы и ошибки
// возвращаются в едином формате; перевод ошибок бизнес-логики в HTTP-статусы
// выполняется только здесь.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/brainxcel/lms-backend/internal/apperr"
)

// Response описывает стандартную структуру успешного JSON‑ответа сервера.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse — структура ответа с ошибкой. Используется также
// в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Success    bool   `json:"success" example:"false"`
	Message    string `json:"message" example:"invalid request body"`
	StatusCode int    `json:"statusCode" example:"400"`
}

// OK возвращает успешный Response с сообщением.
func OK(msg string) Response {
	return Response{Success: true, Message: msg}
}

// OKWithData возвращает успешный Response с сообщением и данными.
func OKWithData(msg string, data any) Response {
	return Response{Success: true, Message: msg, Data: data}
}

// Error возвращает ErrorResponse с сообщением и HTTP-статусом.
func Error(msg string, statusCode int) ErrorResponse {
	return ErrorResponse{Message: msg, StatusCode: statusCode}
}

// RenderError переводит ошибку бизнес-логики в HTTP-ответ.
// Клиент видит только сообщение типизированной ошибки, исходная
// причина остаётся на сервере.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	status := ae.Kind.HTTPStatus()
	render.Status(r, status)
	render.JSON(w, r, Error(ae.Msg, status))
}

// BadRequest возвращает ErrorResponse со статусом 400.
func BadRequest(msg string) ErrorResponse {
	return Error(msg, http.StatusBadRequest)
}

// ValidationError формирует ErrorResponse на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый
// через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return BadRequest(strings.Join(errsMsgs, ", "))
}
