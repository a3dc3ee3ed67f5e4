package gateway

import (
	"encoding/json"
	"strings"

	"github.com/tableside/tableside/internal/apperrors"
)

// errorBody is the error envelope the API returns on non-2xx responses.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// classifyResponse maps a non-2xx response to the error taxonomy.
//
// 404 is only special on the cart fetch path, where absence is the
// normal empty state rather than an error. 401 always classifies as an
// authentication error; whether it also invalidates the session is the
// transport policy's decision, not made here.
func classifyResponse(path string, status int, body []byte) error {
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)
	raw := parsed.text()

	switch {
	case status == 401:
		return &apperrors.AuthenticationError{
			Message: apperrors.LocalizeServerMessage(raw, "Неверный логин или пароль"),
		}
	case status == 403:
		return &apperrors.AuthorizationError{Message: raw}
	case status == 404 && isCartPath(path):
		return apperrors.ErrCartNotFound
	case status >= 400 && status < 500:
		fields := parsed.Fields
		return &apperrors.ValidationError{
			Message: apperrors.LocalizeServerMessage(raw, "Проверьте правильность заполнения полей"),
			Fields:  fields,
		}
	default:
		return &apperrors.ServerError{Status: status, Body: truncate(string(body), 200)}
	}
}

func isCartPath(path string) bool {
	return path == "/cart" || strings.HasPrefix(path, "/cart/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
