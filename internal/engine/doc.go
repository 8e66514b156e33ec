// Package engine валидирует спецификации benchmark и строит план оценки.
//
// План — это DAG задач: загрузка весов, загрузка датасетов по играм,
// rollout по играм и финальная агрегация. Orchestrator выполняет узлы
// плана по мере готовности их зависимостей.
//
// Структура:
//   - validate.go — валидация BenchmarkSpec перед запуском
//   - plan.go     — построение плана, топологическая сортировка, готовые узлы
//   - errors.go   — ошибки валидации
package engine
