package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatching(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err      error
		sentinel error
	}{
		{&ValidationError{Message: "bad"}, ErrValidation},
		{&AuthenticationError{Message: "no"}, ErrAuthentication},
		{&AuthorizationError{}, ErrAuthorization},
		{&ServerError{Status: 502}, ErrServer},
		{&NetworkError{Cause: errors.New("refused")}, ErrNetwork},
	}

	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.sentinel)
		// Wrapped errors still match.
		assert.ErrorIs(t, fmt.Errorf("op failed: %w", tc.err), tc.sentinel)
	}

	assert.NotErrorIs(t, &ServerError{Status: 500}, ErrNetwork)
}

func TestNetworkErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := &NetworkError{Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestLocalizeServerMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Неверный логин или пароль",
		LocalizeServerMessage("Invalid credentials provided", "fallback"))
	assert.Equal(t, "Неверный текущий пароль",
		LocalizeServerMessage("Current password is incorrect", "fallback"))
	assert.Equal(t, "Пользователь с таким именем или email уже существует",
		LocalizeServerMessage("user already exists", "fallback"))
	assert.Equal(t, "fallback",
		LocalizeServerMessage("weird internal detail", "fallback"))
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Неверный логин или пароль",
		UserMessage(&AuthenticationError{Message: "Неверный логин или пароль"}))
	assert.Equal(t, "Ошибка сервера. Попробуйте позже",
		UserMessage(&ServerError{Status: 500}))
	assert.Equal(t, "Нет соединения с сервером. Проверьте подключение",
		UserMessage(&NetworkError{}))
	assert.Equal(t, "Недостаточно прав для этого действия", UserMessage(ErrNotPermitted))
	assert.Equal(t, "Что-то пошло не так. Попробуйте ещё раз", UserMessage(errors.New("boom")))

	// Validation detail appears in Error() but UserMessage stays short.
	verr := &ValidationError{Message: "Проверьте поля", Fields: map[string]string{"email": "обязательное поле"}}
	assert.Contains(t, verr.Error(), "email")
	assert.Equal(t, "Проверьте поля", UserMessage(verr))
}
