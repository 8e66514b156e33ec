package domain

import (
	"time"

	"github.com/google/uuid"
)

// Benchmark — именованный набор игр для оценки модели.
//
// Benchmark — это "рецепт" эксперимента: какие игры, сколько эпизодов,
// какая политика и какие данные нужны. Один benchmark может иметь
// множество версий (BenchmarkVersion). Каждый запуск (Run) выполняет
// конкретную версию benchmark.
type Benchmark struct {
	// ID — уникальный идентификатор benchmark.
	ID uuid.UUID `json:"id"`

	// Name — уникальное имя benchmark (например, "atari-5", "full-suite").
	// Используется для удобной идентификации пользователем.
	Name string `json:"name"`

	// IsActive — флаг активности. Неактивные benchmarks не запускаются по расписанию.
	IsActive bool `json:"is_active"`

	// CreatedAt — время создания benchmark.
	CreatedAt time.Time `json:"created_at"`
}

// BenchmarkVersion — версия benchmark с конкретной спецификацией.
//
// Версионирование позволяет:
// - Отслеживать историю изменений
// - Сравнивать результаты старых и новых конфигураций
type BenchmarkVersion struct {
	// BenchmarkID — ссылка на родительский benchmark.
	BenchmarkID uuid.UUID `json:"benchmark_id"`

	// Version — номер версии (1, 2, 3, ...).
	// Автоинкремент при создании новой версии.
	Version int `json:"version"`

	// Spec — спецификация benchmark в формате JSON.
	Spec BenchmarkSpec `json:"spec"`

	// CreatedAt — время создания версии.
	CreatedAt time.Time `json:"created_at"`
}

// BenchmarkSpec — спецификация benchmark (содержимое JSONB поля spec).
//
// Это полное описание эксперимента: игры, политика, данные, веса.
type BenchmarkSpec struct {
	// Version — версия формата спецификации (для обратной совместимости).
	Version string `json:"version,omitempty"`

	// Name — имя benchmark (дублирует Benchmark.Name для удобства).
	Name string `json:"name,omitempty"`

	// Description — описание назначения benchmark.
	Description string `json:"description,omitempty"`

	// Games — список игр для оценки.
	Games []GameSpec `json:"games"`

	// Policy — настройки политики, под которой играются эпизоды.
	Policy PolicySpec `json:"policy"`

	// Data — настройки загрузки replay датасетов.
	// Nil, если датасеты для этого benchmark не нужны.
	Data *DataSpec `json:"data,omitempty"`

	// Weights — настройки загрузки pretrained весов.
	// Nil, если веса уже доставлены на inference сервер другим путём.
	Weights *WeightsSpec `json:"weights,omitempty"`

	// Defaults — настройки по умолчанию для всех tasks.
	Defaults *TaskDefaults `json:"defaults,omitempty"`
}

// GameSpec — настройки оценки для одной игры.
type GameSpec struct {
	// Name — имя игры в каталоге Atari (например, "Breakout", "Pong").
	Name string `json:"name"`

	// Episodes — сколько эпизодов сыграть.
	// Должно делиться на ParallelEnvs без остатка.
	Episodes int `json:"episodes"`

	// ParallelEnvs — сколько окружений шагают одновременно (batch size rollout).
	ParallelEnvs int `json:"parallel_envs"`

	// Seed — базовый seed для генерации per-episode seeds.
	// 0 означает недетерминированный выбор.
	Seed int64 `json:"seed,omitempty"`
}

// Виды политик.
const (
	PolicyKindRemote = "remote"
	PolicyKindRandom = "random"
)

// PolicySpec — настройки политики.
//
// Сэмплирующие параметры передаются inference серверу как есть.
type PolicySpec struct {
	// Kind — вид политики: "remote" (inference сервер) или "random".
	Kind string `json:"kind"`

	// URL — адрес inference сервера (для kind="remote").
	URL string `json:"url,omitempty"`

	// ActionTemperature — температура сэмплирования действий.
	ActionTemperature float64 `json:"action_temperature,omitempty"`

	// ReturnTemperature — температура сэмплирования return-токена.
	ReturnTemperature float64 `json:"return_temperature,omitempty"`

	// OptWeight — вес optimality-смещения при выборе return.
	OptWeight float64 `json:"opt_weight,omitempty"`

	// NumSamples — количество сэмплов return при выборе действия.
	NumSamples int `json:"num_samples,omitempty"`

	// ActionTopPercentile — перцентиль отсечения действий.
	ActionTopPercentile float64 `json:"action_top_percentile,omitempty"`
}

// DataSpec — настройки загрузки replay датасетов.
type DataSpec struct {
	// BaseURL — базовый URL публичного бакета с датасетами.
	BaseURL string `json:"base_url"`

	// Run — номер run агента, собравшего данные (подкаталог в бакете).
	Run int `json:"run,omitempty"`

	// Checkpoints — номера checkpoint'ов replay буфера (0..49).
	Checkpoints []int `json:"checkpoints"`

	// TargetDir — локальный каталог для скачанных шардов.
	TargetDir string `json:"target_dir"`

	// TrajectoriesPerShard — сколько траекторий читать из каждого шарда.
	TrajectoriesPerShard int `json:"trajectories_per_shard,omitempty"`
}

// WeightsSpec — настройки загрузки pretrained весов.
type WeightsSpec struct {
	// URL — адрес файла с весами.
	URL string `json:"url"`

	// SHA256 — ожидаемая контрольная сумма файла.
	SHA256 string `json:"sha256,omitempty"`

	// Target — локальный путь для сохранения.
	Target string `json:"target"`
}

// TaskDefaults — настройки по умолчанию для tasks.
type TaskDefaults struct {
	// Retry — политика повторных попыток.
	Retry *RetryPolicy `json:"retry,omitempty"`

	// TimeoutSec — таймаут выполнения в секундах.
	TimeoutSec int `json:"timeout_sec,omitempty"`
}

// RetryPolicy — политика повторных попыток.
type RetryPolicy struct {
	// MaxAttempts — максимальное количество попыток (включая первую).
	MaxAttempts int `json:"max_attempts,omitempty"`

	// Backoff — стратегия задержки: "fixed", "exponential".
	Backoff string `json:"backoff,omitempty"`

	// InitialDelayMs — начальная задержка в миллисекундах.
	InitialDelayMs int `json:"initial_delay_ms,omitempty"`

	// MaxDelayMs — максимальная задержка в миллисекундах.
	MaxDelayMs int `json:"max_delay_ms,omitempty"`
}

// Game возвращает GameSpec по имени.
// Nil, если игра не входит в benchmark.
func (s *BenchmarkSpec) Game(name string) *GameSpec {
	for i := range s.Games {
		if s.Games[i].Name == name {
			return &s.Games[i]
		}
	}
	return nil
}

// NeedsData возвращает true, если benchmark требует загрузки датасетов.
func (s *BenchmarkSpec) NeedsData() bool {
	return s.Data != nil && len(s.Data.Checkpoints) > 0
}

// NeedsWeights возвращает true, если benchmark требует загрузки весов.
func (s *BenchmarkSpec) NeedsWeights() bool {
	return s.Weights != nil && s.Weights.URL != ""
}
