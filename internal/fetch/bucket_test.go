package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shaiso/mgdt/internal/replay"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestObjectURL(t *testing.T) {
	d := NewDownloader("https://bucket.example.com/dqn", 3, 1, testLogger())

	got := d.ObjectURL("Breakout", "$store$_action_ckpt.49.gz")
	want := "https://bucket.example.com/dqn/Breakout/3/replay_logs/$store$_action_ckpt.49.gz"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestNewDownloader_Defaults(t *testing.T) {
	d := NewDownloader("", 0, 0, testLogger())

	if d.baseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %s", d.baseURL)
	}
	if d.run != DefaultRun {
		t.Errorf("expected default run, got %d", d.run)
	}
	if d.concurrency != DefaultConcurrency {
		t.Errorf("expected default concurrency, got %d", d.concurrency)
	}
}

func TestDownloadGame(t *testing.T) {
	content := []byte("shard-bytes")
	var requests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// URL вида /Breakout/1/replay_logs/$store$_<field>_ckpt.49.gz
		if !strings.Contains(r.URL.Path, "/Breakout/1/replay_logs/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(content)
	}))
	defer server.Close()

	dir := t.TempDir()
	d := NewDownloader(server.URL, 1, 2, testLogger())

	result, err := d.DownloadGame(context.Background(), "Breakout", []int{49}, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Четыре поля одного чекпоинта
	if result.Downloaded != 4 {
		t.Errorf("expected 4 downloads, got %d", result.Downloaded)
	}
	if result.Bytes != int64(4*len(content)) {
		t.Errorf("expected %d bytes, got %d", 4*len(content), result.Bytes)
	}

	// Файлы на месте
	for _, name := range replay.ShardFileNames(49) {
		path := filepath.Join(dir, "Breakout", name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("file %s should exist: %v", name, err)
		}
		if string(data) != string(content) {
			t.Errorf("file %s content mismatch", name)
		}
	}
}

func TestDownloadGame_SkipsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("x"))
	}))
	defer server.Close()

	dir := t.TempDir()
	d := NewDownloader(server.URL, 1, 1, testLogger())

	if _, err := d.DownloadGame(context.Background(), "Pong", []int{0}, dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Повторный вызов ничего не качает
	result, err := d.DownloadGame(context.Background(), "Pong", []int{0}, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Downloaded != 0 {
		t.Errorf("expected 0 downloads on second call, got %d", result.Downloaded)
	}
	if result.Skipped != 4 {
		t.Errorf("expected 4 skipped, got %d", result.Skipped)
	}
}

func TestDownloadGame_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	d := NewDownloader(server.URL, 1, 1, testLogger())

	_, err := d.DownloadGame(context.Background(), "Pong", []int{0}, t.TempDir())
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestDownloadFile_RetriesServerErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	d := NewDownloader(server.URL, 1, 1, testLogger())
	// Короткие задержки, чтобы тест не тянулся
	dest := filepath.Join(t.TempDir(), "file.gz")

	n, err := d.downloadFile(context.Background(), server.URL+"/file.gz", dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 bytes, got %d", n)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}
