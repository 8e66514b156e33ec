// Package replay читает шарды DQN replay датасета.
//
// Шард — набор gzip-сжатых NPY массивов одного чекпоинта обучающего
// агента: наблюдения, действия, награды и терминальные флаги, выровненные
// по шагам. Пакет разбирает NPY формат, режет массивы на эпизоды и
// собирает траектории с посчитанными returns и timesteps.
//
// Структура:
//   - npy.go     — парсер NPY заголовка и данных
//   - shard.go   — имена файлов шарда, чтение gzip NPY
//   - dataset.go — нарезка на траектории, returns-to-go
package replay
