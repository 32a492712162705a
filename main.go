// dairyPlan project main.go
/*
Copyright 2021 Bruce Golden and Matt Spangler

Permission is hereby granted, free of charge, to any person obtaining a copy of
this software and associated documentation files (the "Software"), to deal in
the Software without restriction, including without limitation the rights to
use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
of the Software, and to permit persons to whom the Software is furnished to do
so, subject to the following conditions:
The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "beta0.1.0"

// Flags shared by every command
var (
	envFile     string
	format      string // table, csv or json
	outFile     string
	showMetrics bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dairyPlan",
		Short:         "Dairy genetic merit projection and herd replacement planning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "environment file (default .env when present)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "output format: table, csv or json")
	rootCmd.PersistentFlags().StringVarP(&outFile, "out", "o", "", "write csv or json output to this file")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "log projection counters when done")

	rootCmd.AddCommand(cohortsCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(pedigreeCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(replaceCmd())
	rootCmd.AddCommand(trendCmd())
	rootCmd.AddCommand(benchmarkCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// planCmd is a command that reads one plan file and runs fn on it
func planCmd(use, short string, fn func(*session) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [plan.hjson]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := initSimulation(args[0])
			if err != nil {
				return err
			}
			defer s.close()
			return fn(s)
		},
	}
}

func cohortsCmd() *cobra.Command {
	return planCmd("cohorts", "Count the females of each parity cohort", runCohorts)
}

func statsCmd() *cobra.Command {
	return planCmd("stats", "Describe the selected traits and the mother averages", runStats)
}

func predictCmd() *cobra.Command {
	return planCmd("predict", "Predict offspring merit by direct or cohort average", runPredict)
}

func pedigreeCmd() *cobra.Command {
	return planCmd("pedigree", "Predict females from sire, MGS and MMGS", runPedigree)
}

func simulateCmd() *cobra.Command {
	return planCmd("simulate", "Project calves, merit, cost and ROI of a mating plan", runSimulate)
}

func replaceCmd() *cobra.Command {
	return planCmd("replace", "Size the replacement heifer program", runReplace)
}

func trendCmd() *cobra.Command {
	return planCmd("trend", "Fit the genetic trend of each selected trait", runTrend)
}

func benchmarkCmd() *cobra.Command {
	return planCmd("benchmark", "Compare the herd with a reference population", runBenchmark)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("dairyPlan", version)
		},
	}
}
