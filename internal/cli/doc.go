// Package cli реализует инструмент командной строки mgdt.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с mgdt API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления benchmarks, runs, schedules
// и просмотра результатов оценки.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для mgdt API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	benchmarks, err := client.ListBenchmarks()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: mgdt run list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - benchmark: list, create, show, update, delete, versions, publish
//   - run: list, start, show, cancel, tasks, scores
//   - schedule: list, create, show, update, delete, enable, disable
//   - scores: history
//
// Каждая группа создаётся через фабричную функцию (NewBenchmarkCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
