package stats

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); !almostEqual(got, 2.5) {
		t.Errorf("expected 2.5, got %v", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("expected 0 for empty sample, got %v", got)
	}
}

func TestStd(t *testing.T) {
	// Популяционное отклонение: sqrt(mean((x-mean)^2))
	if got := Std([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !almostEqual(got, 2) {
		t.Errorf("expected 2, got %v", got)
	}
	if got := Std([]float64{5}); got != 0 {
		t.Errorf("expected 0 for single value, got %v", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); !almostEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIQM(t *testing.T) {
	// 8 значений: отбрасываются 2 минимальных и 2 максимальных
	values := []float64{100, 1, 2, 3, 4, 5, 6, -50}
	// остаются 2,3,4,5 → среднее 3.5
	if got := IQM(values); !almostEqual(got, 3.5) {
		t.Errorf("expected 3.5, got %v", got)
	}

	// Короткая выборка вырождается в среднее
	if got := IQM([]float64{1, 2, 3}); !almostEqual(got, 2) {
		t.Errorf("expected 2 for short sample, got %v", got)
	}
}

func TestIQM_RobustToOutliers(t *testing.T) {
	base := []float64{10, 10, 10, 10, 10, 10, 10, 10}
	withOutlier := []float64{10, 10, 10, 10, 10, 10, 10, 1e9}

	if got := IQM(base); !almostEqual(got, 10) {
		t.Errorf("expected 10, got %v", got)
	}
	// Выброс отбрасывается
	if got := IQM(withOutlier); !almostEqual(got, 10) {
		t.Errorf("IQM should ignore outlier, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Count != 4 {
		t.Errorf("expected count 4, got %d", s.Count)
	}
	if !almostEqual(s.Mean, 2.5) {
		t.Errorf("expected mean 2.5, got %v", s.Mean)
	}
	if !almostEqual(s.Median, 2.5) {
		t.Errorf("expected median 2.5, got %v", s.Median)
	}
	if s.Min != 1 || s.Max != 4 {
		t.Errorf("expected min 1 max 4, got %v %v", s.Min, s.Max)
	}
	// floor(4*0.25)=1 с каждого края → среднее 2,3
	if !almostEqual(s.IQM, 2.5) {
		t.Errorf("expected IQM 2.5, got %v", s.IQM)
	}
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	if !errors.Is(err, ErrEmptySample) {
		t.Errorf("expected ErrEmptySample, got %v", err)
	}
}

func TestHumanNormalized(t *testing.T) {
	// Breakout: random 1.7, human 30.5
	hns, ok := HumanNormalized("Breakout", 30.5)
	if !ok {
		t.Fatal("Breakout should have baselines")
	}
	if !almostEqual(hns, 1) {
		t.Errorf("human score should normalize to 1, got %v", hns)
	}

	hns, ok = HumanNormalized("Breakout", 1.7)
	if !ok {
		t.Fatal("Breakout should have baselines")
	}
	if !almostEqual(hns, 0) {
		t.Errorf("random score should normalize to 0, got %v", hns)
	}

	// Неизвестная игра
	if _, ok := HumanNormalized("Tetris", 100); ok {
		t.Error("unknown game should not have baselines")
	}
}

func TestHumanNormalizedAll(t *testing.T) {
	normalized, ok := HumanNormalizedAll("Pong", []float64{-20.7, 14.6})
	if !ok {
		t.Fatal("Pong should have baselines")
	}
	if len(normalized) != 2 {
		t.Fatalf("expected 2 values, got %d", len(normalized))
	}
	if !almostEqual(normalized[0], 0) || !almostEqual(normalized[1], 1) {
		t.Errorf("expected [0, 1], got %v", normalized)
	}

	if _, ok := HumanNormalizedAll("Tetris", []float64{1}); ok {
		t.Error("unknown game should not normalize")
	}
}
