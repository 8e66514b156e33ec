package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/mgdt/internal/replay"
	"github.com/shaiso/mgdt/internal/telemetry"
)

// Параметры скачивания по умолчанию.
const (
	// DefaultBaseURL — публичный бакет с DQN replay датасетами.
	DefaultBaseURL = "https://storage.googleapis.com/atari-replay-datasets/dqn"

	// DefaultRun — номер прогона обучающего агента в бакете.
	DefaultRun = 1

	// DefaultConcurrency — параллельных загрузок на один fetch.
	DefaultConcurrency = 4

	downloadAttempts  = 4
	downloadBaseDelay = 2 * time.Second
)

// ErrObjectNotFound — объекта нет в бакете (HTTP 404).
var ErrObjectNotFound = errors.New("object not found in bucket")

// Downloader скачивает replay шарды из публичного бакета.
type Downloader struct {
	baseURL     string
	run         int
	concurrency int
	client      *http.Client
	logger      *slog.Logger
}

// NewDownloader создаёт загрузчик. Пустой baseURL и нулевые run и
// concurrency заменяются значениями по умолчанию.
func NewDownloader(baseURL string, run, concurrency int, logger *slog.Logger) *Downloader {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if run <= 0 {
		run = DefaultRun
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Downloader{
		baseURL:     baseURL,
		run:         run,
		concurrency: concurrency,
		client:      &http.Client{Timeout: 15 * time.Minute},
		logger:      logger,
	}
}

// Result — итог скачивания шардов одной игры.
type Result struct {
	Downloaded int   `json:"downloaded"`
	Skipped    int   `json:"skipped"`
	Bytes      int64 `json:"bytes"`
}

// ObjectURL возвращает URL файла шарда в бакете:
// <base>/<Game>/<run>/replay_logs/<file>.
func (d *Downloader) ObjectURL(game, file string) string {
	return fmt.Sprintf("%s/%s/%d/replay_logs/%s", d.baseURL, game, d.run, file)
}

// DownloadGame скачивает все файлы указанных чекпоинтов игры в targetDir.
// Уже существующие файлы пропускаются.
func (d *Downloader) DownloadGame(ctx context.Context, game string, checkpoints []int, targetDir string) (*Result, error) {
	dir := filepath.Join(targetDir, game)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create target dir: %w", err)
	}

	type item struct {
		file string
	}
	var items []item
	for _, ckpt := range checkpoints {
		for _, file := range replay.ShardFileNames(ckpt) {
			items = append(items, item{file: file})
		}
	}

	results := make([]Result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, it := range items {
		g.Go(func() error {
			dest := filepath.Join(dir, it.file)
			if _, err := os.Stat(dest); err == nil {
				results[i].Skipped = 1
				return nil
			}

			n, err := d.downloadFile(gctx, d.ObjectURL(game, it.file), dest)
			if err != nil {
				return fmt.Errorf("download %s: %w", it.file, err)
			}
			results[i].Downloaded = 1
			results[i].Bytes = n
			telemetry.BytesDownloaded.WithLabelValues("replay").Add(float64(n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &Result{}
	for _, r := range results {
		total.Downloaded += r.Downloaded
		total.Skipped += r.Skipped
		total.Bytes += r.Bytes
	}

	d.logger.Info("game shards downloaded",
		"game", game,
		"downloaded", total.Downloaded,
		"skipped", total.Skipped,
		"bytes", total.Bytes)
	return total, nil
}

// downloadFile скачивает объект во временный файл и атомарно переименовывает.
// Ретраит временные ошибки с экспоненциальным backoff.
func (d *Downloader) downloadFile(ctx context.Context, url, dest string) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= downloadAttempts; attempt++ {
		n, err := d.tryDownload(ctx, url, dest)
		if err == nil {
			return n, nil
		}
		if !isRetryable(err) {
			return 0, err
		}
		lastErr = err

		delay := backoffDelay(attempt)
		d.logger.Warn("download failed, retrying",
			"url", url,
			"attempt", attempt,
			"delay", delay.String(),
			"error", err)

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(delay):
		}
	}
	return 0, fmt.Errorf("all %d attempts failed: %w", downloadAttempts, lastErr)
}

// tryDownload выполняет одну попытку скачивания.
func (d *Downloader) tryDownload(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, &transientError{err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("%w: %s", ErrObjectNotFound, url)
	case resp.StatusCode >= 500:
		return 0, &transientError{err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	default:
		return 0, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, &transientError{err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return n, nil
}

// transientError помечает ошибку как ретраябельную.
type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

func isRetryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// backoffDelay возвращает задержку с экспоненциальным ростом и джиттером.
func backoffDelay(attempt int) time.Duration {
	delay := downloadBaseDelay * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(delay) / 4))
	return delay + jitter
}
