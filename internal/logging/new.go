package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a JSON logger writing to stdout for the given backend and level.
// Unknown levels fall back to info.
func New(backend, level string) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", BackendSlog:
		h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseSlogLevel(level)})
		return NewSlogLogger(slog.New(h)), nil
	case BackendZap:
		l, err := buildZap(parseZapLevel(level))
		if err != nil {
			return nil, fmt.Errorf("zap init error: %w", err)
		}
		return NewZapLogger(l), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

func parseSlogLevel(lvl string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(lvl))); err != nil {
		return slog.LevelInfo
	}
	return l
}
