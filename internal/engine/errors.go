package engine

import "errors"

// Ошибки валидации BenchmarkSpec.
var (
	// ErrEmptyGames — benchmark не содержит игр.
	ErrEmptyGames = errors.New("benchmark spec has no games")

	// ErrEmptyGameName — игра без имени.
	ErrEmptyGameName = errors.New("game has empty name")

	// ErrDuplicateGame — несколько записей одной игры.
	ErrDuplicateGame = errors.New("duplicate game")

	// ErrUnknownGame — игры нет в каталоге датасета.
	ErrUnknownGame = errors.New("unknown game")

	// ErrInvalidEpisodes — некорректное число эпизодов.
	ErrInvalidEpisodes = errors.New("invalid episodes")

	// ErrUnknownPolicyKind — неизвестный вид политики.
	ErrUnknownPolicyKind = errors.New("unknown policy kind")

	// ErrInvalidPolicy — некорректные параметры политики.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrInvalidCheckpoint — номер checkpoint вне диапазона.
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")

	// ErrInvalidData — некорректные настройки загрузки датасетов.
	ErrInvalidData = errors.New("invalid data spec")

	// ErrInvalidWeights — некорректные настройки загрузки весов.
	ErrInvalidWeights = errors.New("invalid weights spec")

	// ErrCyclicDependency — обнаружен цикл в зависимостях плана.
	ErrCyclicDependency = errors.New("cyclic dependency detected")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Game    string // игра, где произошла ошибка (пусто для общих полей)
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Game != "" {
		return "game " + e.Game + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(game, field, message string, err error) *ValidationError {
	return &ValidationError{
		Game:    game,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
