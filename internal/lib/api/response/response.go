package response

import (
	"net/http"

	"github.com/go-chi/render"
)

// ExposeDetails включает текст внутренней ошибки в ответ. В prod выключается
var ExposeDetails = true

type Response struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Message отвечает {"message": msg} с заданным статусом
func Message(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Response{Message: msg})
}

// Error отвечает {"message": msg, "error": err}. Детали ошибки видны только при ExposeDetails
func Error(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	resp := Response{Message: msg}
	if err != nil && ExposeDetails {
		resp.Error = err.Error()
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// JSON отвечает произвольным телом с заданным статусом
func JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
