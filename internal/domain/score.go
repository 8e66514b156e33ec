package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameScore — агрегированный результат оценки одной игры внутри run.
//
// Заполняется aggregate task'ом из outputs rollout task'а:
// сырые суммы наград по эпизодам сворачиваются в сводную статистику,
// плюс human-normalized вариант для сравнения между играми.
type GameScore struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// RunID — ссылка на run.
	RunID uuid.UUID `json:"run_id"`

	// Game — имя игры.
	Game string `json:"game"`

	// Episodes — количество сыгранных эпизодов.
	Episodes int `json:"episodes"`

	// RawMean, RawStd, RawMedian, RawIQM — статистика по сырым суммам наград.
	// IQM — interquartile mean (25% trimmed mean), стандартная метрика
	// для сравнения RL агентов.
	RawMean   float64 `json:"raw_mean"`
	RawStd    float64 `json:"raw_std"`
	RawMedian float64 `json:"raw_median"`
	RawIQM    float64 `json:"raw_iqm"`

	// HNSMean, HNSMedian, HNSIQM — human-normalized score:
	// (score - random) / (human - random). Nil, если для игры
	// нет опубликованных baseline'ов.
	HNSMean   *float64 `json:"hns_mean,omitempty"`
	HNSMedian *float64 `json:"hns_median,omitempty"`
	HNSIQM    *float64 `json:"hns_iqm,omitempty"`

	// CreatedAt — время записи.
	CreatedAt time.Time `json:"created_at"`
}
