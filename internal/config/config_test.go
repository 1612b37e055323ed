package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("reads dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		content := "HTTP_LISTEN_ADDR=:9999\nPOSTGRES_WRITE_HOST=db\nQUEUE_MAX_RETRIES=7\nQUEUE_POLL_INTERVAL=2s\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Cleanup(func() {
			for _, k := range []string{"HTTP_LISTEN_ADDR", "POSTGRES_WRITE_HOST", "QUEUE_MAX_RETRIES", "QUEUE_POLL_INTERVAL"} {
				os.Unsetenv(k)
			}
		})

		require.NoError(t, Load(path))

		c := Get()
		assert.Equal(t, ":9999", c.HttpListenAddr)
		assert.Equal(t, "/api", c.HttpBaseRequestUrl)
		assert.Equal(t, "db", c.PostgresWrite().Host)
		assert.Equal(t, 7, c.QueueMaxRetries)
		assert.Equal(t, 2*time.Second, c.QueuePollInterval)
	})

	t.Run("missing file", func(t *testing.T) {
		err := Load(filepath.Join(t.TempDir(), "nope.env"))
		assert.Error(t, err)
	})
}

func TestPageSize(t *testing.T) {
	c := &Config{PageDefaultSize: 10, PageMaxSize: 50}

	assert.Equal(t, 10, c.PageSize(0))
	assert.Equal(t, 10, c.PageSize(-3))
	assert.Equal(t, 25, c.PageSize(25))
	assert.Equal(t, 50, c.PageSize(500))
}

func TestCompensationQueue(t *testing.T) {
	c := &Config{
		QueueName:              "purchase_compensation",
		QueueConsumerGroup:     "compensators",
		QueueMaxRetries:        4,
		QueueVisibilityTimeout: 30 * time.Second,
		QueueBatchSize:         5,
		QueueEnableDLQ:         true,
	}

	qc := c.CompensationQueue()
	assert.Equal(t, "purchase_compensation", qc.Name)
	assert.Equal(t, "compensators", qc.ConsumerGroup)
	assert.Equal(t, 4, qc.MaxRetries)
	assert.Equal(t, 30*time.Second, qc.VisibilityTimeout)
	assert.Equal(t, int64(5), qc.BatchSize)
	assert.True(t, qc.EnableDLQ)
}
