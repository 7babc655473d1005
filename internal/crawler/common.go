// Package crawler holds the primitives every external-source driver shares:
// logger construction, request pacing, dedup tracking and run lifecycle.
package crawler

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// UserAgent is sent by HTTP drivers and the browser session.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// AcceptLanguage matches the marketplaces' home locale.
	AcceptLanguage = "ko-KR,ko;q=0.9"

	DefaultRunTimeout = time.Hour
)

func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

// NewLoggerWithLevel parses a level name, falling back to info.
func NewLoggerWithLevel(level string) *logrus.Logger {
	logger := NewLogger()
	if parsed, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}
	return logger
}

// Turn slice of keywords to small chunks
// ["a", "b", "c", ...] -> [["a", "b"], ...]
func ChunkKeywords(keywords []string, chunkSize int) [][]string {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	var chunks [][]string
	for i := 0; i < len(keywords); i += chunkSize {
		end := min(i+chunkSize, len(keywords))
		chunks = append(chunks, keywords[i:end])
	}
	return chunks
}

// RunWithGracefulShutdown runs fn under a context that is cancelled on
// SIGINT/SIGTERM or when timeout elapses.
func RunWithGracefulShutdown(
	logger *logrus.Logger,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Info("Received shutdown signal, gracefully shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	err := fn(ctx)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Warnf("Run exceeded its %v ceiling", timeout)
	}
	return err
}
