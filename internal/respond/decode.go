package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"feedhub/internal/apperr"
)

const maxBody = 1 << 20

// Decode читает JSON-тело строго: неизвестное поле — UnknownField,
// неверный тип — Data. entity подставляется в текст ошибки.
func Decode(r *http.Request, entity string, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeErr(entity, err)
	}
	if dec.More() {
		return apperr.Data(entity, "", "body must contain a single JSON object")
	}
	return nil
}

func decodeErr(entity string, err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return apperr.Data(entity, "", "request body is empty")
	case errors.As(err, &typeErr):
		return apperr.Data(entity, typeErr.Field, fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type))
	case errors.As(err, &syntaxErr):
		return apperr.Data(entity, "", fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
	}
	// encoding/json не экспортирует тип для неизвестного поля
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return apperr.UnknownField(entity, strings.Trim(field, `"`))
	}
	return apperr.Data(entity, "", err.Error())
}
