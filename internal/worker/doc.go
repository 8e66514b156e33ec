// Package worker выполняет отдельные tasks.
//
// # Обзор
//
// Worker — stateless компонент платформы, который выполняет отдельные
// задачи (tasks), созданные Orchestrator'ом. Worker отвечает за:
//
//   - Получение tasks из очереди RabbitMQ (event-driven)
//   - Периодическую проверку queued tasks в БД (polling fallback)
//   - Выполнение task в зависимости от типа (fetch, weights, rollout, aggregate)
//   - Retry с exponential backoff при ошибках
//   - Публикацию события task.completed для Orchestrator
//
// # Типы задач
//
//   - fetch     — скачивание replay шардов одной игры из бакета
//   - weights   — скачивание чекпоинта весов с проверкой sha256
//   - rollout   — batched rollout эпизодов одной игры
//   - aggregate — сведение результатов rollout'ов в game_scores
//
// Workers масштабируются горизонтально: несколько экземпляров могут
// потреблять из одной очереди tasks.ready.
package worker
