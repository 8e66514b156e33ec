// Package atari определяет интерфейс игровых окружений и обёртки над ними.
//
// Структура:
//   - env.go       — интерфейс Env, константы action space и экрана
//   - games.go     — каталог игр
//   - wrapper.go   — SequenceWrapper: история кадров/действий/наград
//   - remote.go    — клиент env-gateway (эмуляция вне процесса)
//   - synthetic.go — детерминированное окружение для тестов и smoke runs
//
// Сама эмуляция Atari в процесс не встраивается: живые игры шагают
// через HTTP gateway, платформа работает с кадрами как с байтами.
package atari
