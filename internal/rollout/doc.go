// Package rollout играет эпизоды батчем окружений в lockstep.
//
// Все окружения батча шагают синхронно: политика получает истории
// всех окружений разом и возвращает по действию на каждое. Завершённые
// окружения выбывают из шагания, их награды перестают учитываться,
// батч останавливается, когда завершены все.
package rollout
