package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestChunkKeywords(t *testing.T) {
	keywords := []string{"물티슈", "텀블러", "수세미", "행주", "도마", "밀폐용기", "키친타올"}

	tests := []struct {
		name      string
		chunkSize int
		expected  int
	}{
		{"Chunk by 2", 2, 4},
		{"Chunk by 3", 3, 3},
		{"Chunk by 5", 5, 2},
		{"Chunk by 10", 10, 1},
		{"Chunk by 1", 1, 7},
		{"Chunk by 0", 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkKeywords(keywords, tt.chunkSize)
			if len(chunks) != tt.expected {
				t.Errorf("Expected %d chunks, got %d", tt.expected, len(chunks))
			}

			// Verify all keywords are present
			total := 0
			for _, chunk := range chunks {
				total += len(chunk)
			}
			if total != len(keywords) {
				t.Errorf("Expected %d total keywords, got %d", len(keywords), total)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()

	if logger == nil {
		t.Error("Expected logger to be initialized")
	}
}

func TestNewLoggerWithLevel(t *testing.T) {
	if got := NewLoggerWithLevel("debug").GetLevel(); got != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %s", got)
	}
	if got := NewLoggerWithLevel("nonsense").GetLevel(); got != logrus.InfoLevel {
		t.Errorf("Expected info fallback, got %s", got)
	}
}

func TestRunWithGracefulShutdownTimeout(t *testing.T) {
	err := RunWithGracefulShutdown(NewLogger(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}
