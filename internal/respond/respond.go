// Package respond пишет JSON-ответы и переводит ошибки apperr в HTTP-статусы.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"feedhub/internal/apperr"
	"feedhub/internal/logs"
)

// ErrorBody — тело ответа об ошибке.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

func Created(w http.ResponseWriter, v any) { JSON(w, http.StatusCreated, v) }

func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

var kinds = []struct {
	err    error
	status int
	name   string
}{
	{apperr.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperr.ErrReferenceInUse, http.StatusConflict, "reference_in_use"},
	{apperr.ErrReferential, http.StatusBadRequest, "referential"},
	{apperr.ErrIntegrity, http.StatusBadRequest, "integrity"},
	{apperr.ErrUnknownField, http.StatusUnprocessableEntity, "unknown_field"},
	{apperr.ErrData, http.StatusUnprocessableEntity, "data"},
	{apperr.ErrConfigNotFound, http.StatusUnprocessableEntity, "config_not_found"},
}

// Status возвращает HTTP-статус и имя вида ошибки.
func Status(err error) (int, string) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status, k.name
		}
	}
	return http.StatusInternalServerError, "unexpected"
}

// Error пишет ошибку. Неожиданные ошибки логируются целиком, а клиенту
// уходит только общее сообщение.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := Status(err)
	body := ErrorBody{Error: err.Error(), Kind: kind}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body.Field = ae.Field
	}
	if status == http.StatusInternalServerError {
		logs.With("http").WithError(err).Errorf("%s %s", r.Method, r.URL.Path)
		body.Error = "unexpected error"
	}
	JSON(w, status, body)
}

// BadRequest — ошибка разбора запроса, до обращения к хранилищу.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: msg, Kind: "bad_request"})
}
