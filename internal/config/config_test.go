package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: s3cret\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vidshare", cfg.App.Name)
	assert.Equal(t, 5000, cfg.App.Port)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, int64(500*MiB), cfg.Storage.MaxVideoBytes())
	assert.Equal(t, "video-uploaded", cfg.Kafka.Topic("video_uploaded"))
	assert.Equal(t, "videos", cfg.Elasticsearch.VideosIndex())
	assert.Equal(t, "s3cret", Get().JWT.Secret)
}

func TestLoad_SecretFromEnv(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: \"\"\n")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, "app:\n  name: x\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		JWT:     JWTConfig{Secret: "k"},
		Storage: StorageConfig{Driver: "s3", MaxVideoSizeMB: 1, MaxFileSizeMB: 1},
	}
	assert.NoError(t, base.Validate())

	bad := base
	bad.Storage.MaxVideoSizeMB = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidSizeLimit)

	bad = base
	bad.Storage.Driver = "azure"
	assert.ErrorIs(t, bad.Validate(), ErrUnknownDriver)
}
