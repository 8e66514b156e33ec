// Package fetch скачивает артефакты оценки: replay шарды из публичного
// бакета и чекпоинт весов модели.
//
// Скачивание идемпотентно: уже существующие файлы пропускаются, запись
// идёт во временный файл с атомарным rename. Временные 5xx и сетевые
// ошибки ретраятся с экспоненциальным backoff.
package fetch
