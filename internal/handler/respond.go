package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hiroki-koketsu/todo-tracker/internal/model"
)

// messageResponse is the body of acknowledgements and errors.
type messageResponse struct {
	Message string `json:"message"`
}

// clearResponse is the body returned by the bulk delete.
type clearResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{Message: message})
}

// statusFor maps domain errors to a status code and a message that is safe
// to show the client. Anything unrecognised is a store failure and gets the
// generic fallback.
func statusFor(err error, fallback string) (int, string) {
	var taskErr model.TaskError
	switch {
	case errors.Is(err, model.ErrTaskNotFound):
		return http.StatusNotFound, model.ErrTaskNotFound.Message
	case errors.As(err, &taskErr):
		return http.StatusBadRequest, taskErr.Message
	default:
		return http.StatusInternalServerError, fallback
	}
}
