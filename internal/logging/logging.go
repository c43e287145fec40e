package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"

	"piverse/internal/config"
)

// New builds the node logger writing to w.
func New(cfg config.LogConfig, w io.Writer) (log.Logger, error) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
		level = parsed
	}

	opts := []log.Option{
		log.LevelOption(level),
		log.TimeFormatOption(time.RFC3339),
	}
	switch cfg.Format {
	case "", config.LogFormatJSON:
		opts = append(opts, log.OutputJSONOption())
	case config.LogFormatPlain:
		opts = append(opts, log.ColorOption(cfg.File == ""))
	default:
		return nil, fmt.Errorf("unknown log.format %q", cfg.Format)
	}
	return log.NewLogger(w, opts...), nil
}

// OpenWriter returns stdout, or a size-capped file when cfg.File is set.
func OpenWriter(cfg config.LogConfig) (io.WriteCloser, error) {
	if strings.TrimSpace(cfg.File) == "" {
		return nopCloser{os.Stdout}, nil
	}
	return newSizeLimitedWriter(cfg.File, cfg.MaxMB)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
