package atari

import (
	"context"
	"errors"
)

// Константы препроцессинга, общие для всего датасета.
const (
	// ScreenSize — сторона обработанного grayscale кадра.
	ScreenSize = 84

	// NumActions — полный action set Atari.
	// Максимум действий среди всех игр датасета.
	NumActions = 18

	// FrameSkip — сколько сырых кадров покрывает один шаг окружения.
	FrameSkip = 4

	// MaxEpisodeSteps — лимит шагов эпизода: 108000 сырых кадров / FrameSkip.
	MaxEpisodeSteps = 108000 / FrameSkip
)

// FrameLen — размер одного кадра в байтах.
const FrameLen = ScreenSize * ScreenSize

// Ошибки окружений.
var (
	// ErrEpisodeOver — шаг после завершения эпизода.
	ErrEpisodeOver = errors.New("episode is over, reset required")

	// ErrInvalidAction — действие вне action set.
	ErrInvalidAction = errors.New("invalid action")

	// ErrGateway — env gateway вернул ошибку.
	ErrGateway = errors.New("env gateway request failed")
)

// Frame — один обработанный grayscale кадр (ScreenSize x ScreenSize, row-major).
type Frame []uint8

// Env — игровое окружение.
//
// Реализации: RemoteEnv (живая эмуляция через gateway), SyntheticEnv (тесты).
// Шаг уже включает frame skip: одно действие — один возвращённый кадр.
type Env interface {
	// Reset начинает новый эпизод и возвращает первый кадр.
	Reset(ctx context.Context, seed int64) (Frame, error)

	// Step выполняет действие. Возвращает кадр, награду и флаг завершения.
	Step(ctx context.Context, action int) (Frame, float64, bool, error)

	// Close освобождает ресурсы окружения.
	Close() error
}

// ZeroFrame возвращает пустой кадр (для padding истории).
func ZeroFrame() Frame {
	return make(Frame, FrameLen)
}
