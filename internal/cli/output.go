package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        os.Stdout,
		errW:     os.Stderr,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	// Заголовки
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	// Разделитель
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	// Строки данных
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// RunTable выводит runs.
func (o *Output) RunTable(runs []RunResponse) {
	headers := []string{"ID", "BENCHMARK_ID", "VERSION", "STATUS", "CREATED"}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{r.ID, r.BenchmarkID, strconv.Itoa(r.Version), r.Status, r.CreatedAt}
	}
	o.Print(headers, rows, runs)
}

// TaskTable выводит tasks одного run.
func (o *Output) TaskTable(tasks []TaskResponse) {
	headers := []string{"ID", "STEP_ID", "TYPE", "STATUS", "ATTEMPT", "ERROR"}
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		rows[i] = []string{t.ID, t.StepID, t.Type, t.Status, strconv.Itoa(t.Attempt), t.Error}
	}
	o.Print(headers, rows, tasks)
}

// ScoreTable выводит результаты игр run: сырые метрики и human-normalized
// IQM. Прочерк в HNS колонке — у игры нет опубликованных baseline'ов.
func (o *Output) ScoreTable(scores []ScoreResponse) {
	headers := []string{"GAME", "EPISODES", "RAW_MEAN", "RAW_IQM", "HNS_IQM"}
	rows := make([][]string, len(scores))
	for i, s := range scores {
		rows[i] = []string{
			s.Game,
			strconv.Itoa(s.Episodes),
			formatFloat(s.RawMean),
			formatFloat(s.RawIQM),
			formatFloatPtr(s.HNSIQM),
		}
	}
	o.Print(headers, rows, scores)
}

// HistoryTable выводит историю одной игры по runs.
func (o *Output) HistoryTable(scores []ScoreResponse) {
	headers := []string{"RUN_ID", "EPISODES", "RAW_MEAN", "RAW_IQM", "HNS_IQM", "CREATED"}
	rows := make([][]string, len(scores))
	for i, s := range scores {
		rows[i] = []string{
			s.RunID,
			strconv.Itoa(s.Episodes),
			formatFloat(s.RawMean),
			formatFloat(s.RawIQM),
			formatFloatPtr(s.HNSIQM),
			s.CreatedAt,
		}
	}
	o.Print(headers, rows, scores)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}
