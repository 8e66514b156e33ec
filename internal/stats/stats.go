package stats

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptySample — статистика по пустой выборке не определена.
var ErrEmptySample = errors.New("empty sample")

// Summary — сводная статистика по выборке.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	IQM    float64 `json:"iqm"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize вычисляет сводную статистику по выборке.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptySample
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Summary{
		Count:  len(sorted),
		Mean:   Mean(sorted),
		Std:    Std(sorted),
		Median: medianSorted(sorted),
		IQM:    iqmSorted(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}, nil
}

// Mean возвращает среднее арифметическое.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std возвращает популяционное стандартное отклонение.
func Std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Median возвращает медиану выборки.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return medianSorted(sorted)
}

// IQM возвращает interquartile mean: среднее после отбрасывания
// 25% наименьших и 25% наибольших значений.
// Для выборок короче 4 значений вырождается в обычное среднее.
func IQM(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return iqmSorted(sorted)
}

// medianSorted — медиана уже отсортированной выборки.
func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// iqmSorted — IQM уже отсортированной выборки.
// Отбрасывается floor(n*0.25) значений с каждого края.
func iqmSorted(sorted []float64) float64 {
	n := len(sorted)
	cut := int(math.Floor(float64(n) * 0.25))
	trimmed := sorted[cut : n-cut]
	return Mean(trimmed)
}
