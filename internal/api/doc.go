// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go           — Handler с DI (репозитории, publisher, logger)
//   - routes.go            — регистрация маршрутов
//   - middleware.go        — middleware (logging, recovery)
//   - response.go          — унифицированные JSON-ответы и обработка ошибок
//   - dto.go               — Data Transfer Objects (request/response)
//   - benchmark_handler.go — обработчики для /benchmarks
//   - run_handler.go       — обработчики для /runs
//   - schedule_handler.go  — обработчики для /schedules
//   - score_handler.go     — обработчики для /scores
//
// API предоставляет REST endpoints для управления benchmarks, runs,
// schedules и чтения результатов оценки.
package api
