package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shaiso/mgdt/internal/telemetry"
)

// ErrChecksumMismatch — sha256 скачанного файла не совпал с ожидаемым.
var ErrChecksumMismatch = errors.New("weights checksum mismatch")

// WeightsResult — итог скачивания чекпоинта весов.
type WeightsResult struct {
	Path    string `json:"path"`
	Bytes   int64  `json:"bytes"`
	SHA256  string `json:"sha256"`
	Skipped bool   `json:"skipped"`
}

// DownloadWeights скачивает чекпоинт весов модели в target и проверяет
// sha256. Пустой wantSHA отключает проверку. Существующий файл с
// совпадающей суммой пропускается.
func DownloadWeights(ctx context.Context, url, wantSHA, target string, logger *slog.Logger) (*WeightsResult, error) {
	wantSHA = strings.ToLower(strings.TrimSpace(wantSHA))

	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		sum, err := fileSHA256(target)
		if err != nil {
			return nil, err
		}
		if wantSHA == "" || sum == wantSHA {
			logger.Info("weights already present", "path", target, "sha256", sum)
			return &WeightsResult{Path: target, Bytes: info.Size(), SHA256: sum, Skipped: true}, nil
		}
		logger.Warn("existing weights have wrong checksum, re-downloading",
			"path", target, "got", sum, "want", wantSHA)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create weights dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 30 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download weights: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download weights: HTTP %d for %s", resp.StatusCode, url)
	}

	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, hasher), resp.Body)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("write weights: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, err
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	if wantSHA != "" && sum != wantSHA {
		os.Remove(tmp)
		return nil, fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, sum, wantSHA)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return nil, err
	}

	telemetry.BytesDownloaded.WithLabelValues("weights").Add(float64(n))
	logger.Info("weights downloaded", "path", target, "bytes", n, "sha256", sum)
	return &WeightsResult{Path: target, Bytes: n, SHA256: sum}, nil
}

// fileSHA256 считает sha256 существующего файла.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
