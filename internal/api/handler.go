package api

import (
	"log/slog"

	"github.com/shaiso/mgdt/internal/mq"
	"github.com/shaiso/mgdt/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	benchmarkRepo *repo.BenchmarkRepo
	runRepo       *repo.RunRepo
	taskRepo      *repo.TaskRepo
	scheduleRepo  *repo.ScheduleRepo
	scoreRepo     *repo.ScoreRepo
	publisher     *mq.Publisher
	logger        *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	BenchmarkRepo *repo.BenchmarkRepo
	RunRepo       *repo.RunRepo
	TaskRepo      *repo.TaskRepo
	ScheduleRepo  *repo.ScheduleRepo
	ScoreRepo     *repo.ScoreRepo
	Publisher     *mq.Publisher
	Logger        *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		benchmarkRepo: cfg.BenchmarkRepo,
		runRepo:       cfg.RunRepo,
		taskRepo:      cfg.TaskRepo,
		scheduleRepo:  cfg.ScheduleRepo,
		scoreRepo:     cfg.ScoreRepo,
		publisher:     cfg.Publisher,
		logger:        cfg.Logger,
	}
}
