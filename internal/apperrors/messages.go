package apperrors

import (
	"errors"
	"strings"
)

// User-facing messages. The product ships in Russian; server message
// fragments are re-mapped to these strings rather than shown raw.
const (
	msgInvalidCredentials  = "Неверный логин или пароль"
	msgWrongPassword       = "Неверный текущий пароль"
	msgUserExists          = "Пользователь с таким именем или email уже существует"
	msgSessionExpired      = "Сессия истекла. Войдите снова"
	msgAccessDenied        = "Недостаточно прав для этого действия"
	msgServerError         = "Ошибка сервера. Попробуйте позже"
	msgNetworkError        = "Нет соединения с сервером. Проверьте подключение"
	msgValidationFallback  = "Проверьте правильность заполнения полей"
	msgUnknown             = "Что-то пошло не так. Попробуйте ещё раз"
)

// serverFragments maps known server message fragments to localized text.
// The gateway pattern-matches response bodies against these; anything
// unrecognized falls back to the taxonomy-level message.
var serverFragments = []struct {
	fragment string
	message  string
}{
	{"invalid credentials", msgInvalidCredentials},
	{"invalid username or password", msgInvalidCredentials},
	{"current password is incorrect", msgWrongPassword},
	{"wrong current password", msgWrongPassword},
	{"already exists", msgUserExists},
	{"already registered", msgUserExists},
	{"token expired", msgSessionExpired},
	{"token is invalid", msgSessionExpired},
}

// LocalizeServerMessage maps a raw server message to user-facing text.
// Returns the fallback when no known fragment matches.
func LocalizeServerMessage(raw, fallback string) string {
	lowered := strings.ToLower(raw)
	for _, m := range serverFragments {
		if strings.Contains(lowered, m.fragment) {
			return m.message
		}
	}
	return fallback
}

// UserMessage returns the single human-readable message shown to the
// user for any engine error. Internal detail stays in logs only.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Message != "" {
			return validationErr.Message
		}
		return msgValidationFallback
	}

	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		if authErr.Message != "" {
			return authErr.Message
		}
		return msgInvalidCredentials
	}

	switch {
	case errors.Is(err, ErrAuthorization):
		return msgAccessDenied
	case errors.Is(err, ErrServer):
		return msgServerError
	case errors.Is(err, ErrNetwork):
		return msgNetworkError
	case errors.Is(err, ErrNotPermitted):
		return msgAccessDenied
	default:
		return msgUnknown
	}
}
