package testanalyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/okian/taskrank/pkg/logger"
)

// Run posts cfg.File to the configured endpoint and prints the response to
// out. Non-2xx statuses are printed, not returned as errors.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.Named("test-analyze")

	body, err := ReadSample(cfg.File)
	if err != nil {
		return err
	}

	url := cfg.URL()
	log.Debug(ctx, "posting sample",
		logger.String("file", cfg.File),
		logger.String("url", url),
		logger.Int("bytes", len(body)),
	)

	start := time.Now()
	resp, err := NewHTTPClient(cfg.Timeout).PostJSON(ctx, url, body)
	if err != nil {
		log.Error(ctx, "request failed; make sure the server is running", logger.String("url", url), logger.Error(err))
		return err
	}
	log.Debug(ctx, "response received",
		logger.Int("status", resp.Status),
		logger.Int("bytes", len(resp.Body)),
		logger.Float64("elapsedMs", float64(time.Since(start).Microseconds())/1000),
	)

	return Print(out, resp, cfg.Format)
}

// ReadSample loads and checks a sample task file.
func ReadSample(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSampleNotFound, path)
		}
		return nil, fmt.Errorf("read sample: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSample, path)
	}
	return data, nil
}
