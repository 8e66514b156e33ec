// Package stats сворачивает сырые результаты эпизодов в сводные метрики.
//
// Включает:
//   - stats.go     — mean/std/median/IQM по суммам наград
//   - normalize.go — human-normalized score по опубликованным baseline'ам
//
// IQM (interquartile mean) — основная метрика для сравнения агентов:
// устойчива к выбросам отдельных эпизодов.
package stats
