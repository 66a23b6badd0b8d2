package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quest_reward_backend/internal/config"
	"quest_reward_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	logger.Log = zap.NewNop()

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("storage:\n  type: minio\ngrading:\n  passing_score: 60\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, file, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待监听器就绪
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("storage:\n  type: minio\ngrading:\n  passing_score: 75\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 75, cfg.Grading.PassingScore)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
