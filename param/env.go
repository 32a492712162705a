// env
// Process settings from the environment or a .env file
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
package param

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/blgolden/iGenDecModel/dairyPlan/logger"
)

const (
	EnvOutputMode = "DAIRYPLAN_OUTPUT_MODE"
	EnvLogLevel   = "DAIRYPLAN_LOG_LEVEL"
	EnvWorkers    = "DAIRYPLAN_WORKERS"
)

// Env is the settings that do not belong in a plan file
type Env struct {
	OutputMode string // verbose, table or quiet
	LogLevel   string
	Workers    int // Goroutines for pedigree batches
}

// LoadEnv reads envFile when given (a missing file is fine) and then the
// process environment
func LoadEnv(envFile string) (Env, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Env{}, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	env := Env{
		OutputMode: getenvWithDefault(EnvOutputMode, logger.Table),
		LogLevel:   getenvWithDefault(EnvLogLevel, "info"),
		Workers:    runtime.NumCPU(),
	}
	if w := os.Getenv(EnvWorkers); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < 1 {
			return Env{}, fmt.Errorf("%s must be a positive integer, got %q", EnvWorkers, w)
		}
		env.Workers = n
	}
	if !logger.ValidMode(env.OutputMode) {
		return Env{}, fmt.Errorf("%s must be verbose, table or quiet, got %q", EnvOutputMode, env.OutputMode)
	}
	return env, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
