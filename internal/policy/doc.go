// Package policy выбирает действия для батча окружений.
//
// RemotePolicy отправляет истории батча inference серверу и получает
// по одному действию на окружение. RandomPolicy сэмплирует равномерно
// и служит baseline'ом и заглушкой для тестов пайплайна.
package policy
