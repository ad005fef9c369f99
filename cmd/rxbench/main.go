package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/flowsignal/rx"
)

func main() {
	cmd := &cli.Command{
		Name:  "rxbench",
		Usage: "benchmarks for the rx signal runtime",
		Commands: []*cli.Command{
			pipeCommand(),
			mergeCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

var iterations = []int{1, 10, 100, 1_000, 10_000}

// pipeCommand times a single observer receiving values sent straight
// through a rx.Pipe, end to end through MapSignal.
func pipeCommand() *cli.Command {
	return &cli.Command{
		Name:  "pipe",
		Usage: "times Pipe -> MapSignal -> observer delivery",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tbl := table.NewWriter()
			tbl.SetTitle("Pipe + MapSignal")
			tbl.SetOutputMirror(os.Stdout)
			tbl.AppendHeader(table.Row{"sends", "avg", "min", "p75", "p99", "max"})

			for _, n := range iterations {
				tach := tachymeter.New(&tachymeter.Config{Size: n})
				s, input, interrupt := rx.Pipe[int, rx.Never]()
				defer interrupt.Dispose()
				mapped := rx.MapSignal(s, func(v int) int { return v + 1 })
				sub := mapped.ObserveValues(func(int) {})
				defer sub.Dispose()

				for i := 0; i < n; i++ {
					start := time.Now()
					input.SendValue(i)
					tach.AddTime(time.Since(start))
				}

				calc := tach.Calc()
				tbl.AppendRow(table.Row{
					humanize.Comma(int64(n)),
					calc.Time.Avg, calc.Time.Min, calc.Time.P75, calc.Time.P99, calc.Time.Max,
				})
			}
			tbl.Render()
			return nil
		},
	}
}

// mergeCommand times fan-in throughput of MergeSignal across a growing
// number of source pipes.
func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:  "merge",
		Usage: "times MergeSignal fan-in across N source pipes",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			widths := []int{1, 2, 4, 8, 16}
			out := tablewriter.NewWriter(os.Stdout)
			out.SetHeader([]string{"sources", "sends each", "avg", "max"})

			for _, w := range widths {
				const sendsEach = 1_000
				tach := tachymeter.New(&tachymeter.Config{Size: w * sendsEach})

				signals := make([]*rx.Signal[int, rx.Never], w)
				inputs := make([]*rx.Observer[int, rx.Never], w)
				interrupts := make([]rx.Disposable, w)
				for i := range signals {
					signals[i], inputs[i], interrupts[i] = rx.Pipe[int, rx.Never]()
				}
				merged := rx.MergeSignal(signals...)
				sub := merged.ObserveValues(func(int) {})

				for i := 0; i < sendsEach; i++ {
					for _, in := range inputs {
						start := time.Now()
						in.SendValue(i)
						tach.AddTime(time.Since(start))
					}
				}
				for _, ip := range interrupts {
					ip.Dispose()
				}
				sub.Dispose()

				calc := tach.Calc()
				out.Append([]string{
					fmt.Sprintf("%d", w),
					humanize.Comma(int64(sendsEach)),
					calc.Time.Avg.String(),
					calc.Time.Max.String(),
				})
			}
			out.Render()
			return nil
		},
	}
}
