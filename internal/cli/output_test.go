package cli

import (
	"bytes"
	"strings"
	"testing"
)

func testOutput(jsonMode bool) (*Output, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Output{jsonMode: jsonMode, w: &buf, errW: &buf}, &buf
}

func TestOutput_ScoreTable(t *testing.T) {
	hns := 1.25
	out, buf := testOutput(false)

	out.ScoreTable([]ScoreResponse{
		{Game: "Breakout", Episodes: 16, RawMean: 30.5, RawIQM: 28.125, HNSIQM: &hns},
		{Game: "Pong", Episodes: 16, RawMean: -20.7, RawIQM: -21.0},
	})

	got := buf.String()
	for _, want := range []string{"GAME", "HNS_IQM", "Breakout", "28.13", "1.25"} {
		if !strings.Contains(got, want) {
			t.Errorf("table should contain %q:\n%s", want, got)
		}
	}

	// У Pong в этой выборке нет HNS — в последней колонке прочерк
	for _, line := range strings.Split(got, "\n") {
		if !strings.HasPrefix(line, "Pong") {
			continue
		}
		fields := strings.Fields(line)
		if fields[len(fields)-1] != "-" {
			t.Errorf("missing HNS should render as dash: %q", line)
		}
	}
}

func TestOutput_HistoryTable_JSONMode(t *testing.T) {
	out, buf := testOutput(true)

	out.HistoryTable([]ScoreResponse{
		{RunID: "0c6157f2-0000-0000-0000-000000000000", Game: "Pong", Episodes: 4},
	})

	got := buf.String()
	if !strings.Contains(got, `"game": "Pong"`) {
		t.Errorf("JSON mode should emit raw response, got:\n%s", got)
	}
	if strings.Contains(got, "RUN_ID") {
		t.Errorf("JSON mode should not render table headers:\n%s", got)
	}
}

func TestOutput_RunTable(t *testing.T) {
	out, buf := testOutput(false)

	out.RunTable([]RunResponse{
		{ID: "r1", BenchmarkID: "b1", Version: 3, Status: "RUNNING", CreatedAt: "2026-08-01"},
	})

	got := buf.String()
	for _, want := range []string{"BENCHMARK_ID", "r1", "3", "RUNNING"} {
		if !strings.Contains(got, want) {
			t.Errorf("table should contain %q:\n%s", want, got)
		}
	}
}
