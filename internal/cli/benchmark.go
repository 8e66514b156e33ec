package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewBenchmarkCmd создаёт группу команд для управления benchmarks.
func NewBenchmarkCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Manage benchmarks",
	}

	cmd.AddCommand(
		newBenchmarkListCmd(clientFn, outputFn),
		newBenchmarkCreateCmd(clientFn, outputFn),
		newBenchmarkShowCmd(clientFn, outputFn),
		newBenchmarkUpdateCmd(clientFn, outputFn),
		newBenchmarkDeleteCmd(clientFn, outputFn),
		newBenchmarkVersionsCmd(clientFn, outputFn),
		newBenchmarkPublishCmd(clientFn, outputFn),
	)

	return cmd
}

func newBenchmarkListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all benchmarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			benchmarks, err := client.ListBenchmarks()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "ACTIVE", "CREATED"}
			rows := make([][]string, len(benchmarks))
			for i, b := range benchmarks {
				rows[i] = []string{b.ID, b.Name, strconv.FormatBool(b.IsActive), b.CreatedAt}
			}

			out.Print(headers, rows, benchmarks)
			return nil
		},
	}
}

func newBenchmarkCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new benchmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			benchmark, err := client.CreateBenchmark(name)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Benchmark created: %s", benchmark.ID))
			out.Print(
				[]string{"ID", "NAME", "ACTIVE", "CREATED"},
				[][]string{{benchmark.ID, benchmark.Name, strconv.FormatBool(benchmark.IsActive), benchmark.CreatedAt}},
				benchmark,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Benchmark name (required)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newBenchmarkShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show benchmark details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			benchmark, err := client.GetBenchmark(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "ACTIVE", "CREATED"},
				[][]string{{benchmark.ID, benchmark.Name, strconv.FormatBool(benchmark.IsActive), benchmark.CreatedAt}},
				benchmark,
			)
			return nil
		},
	}
}

func newBenchmarkUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var active string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a benchmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateBenchmarkRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("active") {
				b, err := strconv.ParseBool(active)
				if err != nil {
					return fmt.Errorf("invalid value for --active: %s", active)
				}
				req.IsActive = &b
			}

			benchmark, err := client.UpdateBenchmark(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Benchmark updated")
			out.Print(
				[]string{"ID", "NAME", "ACTIVE", "CREATED"},
				[][]string{{benchmark.ID, benchmark.Name, strconv.FormatBool(benchmark.IsActive), benchmark.CreatedAt}},
				benchmark,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New benchmark name")
	cmd.Flags().StringVar(&active, "active", "", "Set active status (true/false)")

	return cmd
}

func newBenchmarkDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a benchmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteBenchmark(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Benchmark deleted: %s", args[0]))
			return nil
		},
	}
}

func newBenchmarkVersionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "versions BENCHMARK_ID",
		Short: "List benchmark versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			versions, err := client.ListVersions(args[0])
			if err != nil {
				return err
			}

			headers := []string{"BENCHMARK_ID", "VERSION", "CREATED"}
			rows := make([][]string, len(versions))
			for i, v := range versions {
				rows[i] = []string{v.BenchmarkID, strconv.Itoa(v.Version), v.CreatedAt}
			}

			out.Print(headers, rows, versions)
			return nil
		},
	}
}

func newBenchmarkPublishCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var specFile string

	cmd := &cobra.Command{
		Use:   "publish BENCHMARK_ID",
		Short: "Publish a new benchmark version from spec file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(specFile)
			if err != nil {
				return fmt.Errorf("failed to read spec file: %w", err)
			}

			// Валидируем что это валидный JSON
			if !json.Valid(data) {
				return fmt.Errorf("spec file is not valid JSON")
			}

			version, err := client.CreateVersion(args[0], json.RawMessage(data))
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Version %d published for benchmark %s", version.Version, version.BenchmarkID))
			out.Print(
				[]string{"BENCHMARK_ID", "VERSION", "CREATED"},
				[][]string{{version.BenchmarkID, strconv.Itoa(version.Version), version.CreatedAt}},
				version,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&specFile, "spec-file", "", "Path to spec JSON file (required)")
	cmd.MarkFlagRequired("spec-file")

	return cmd
}
