package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/activecm/iptrack/config"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerLevels(t *testing.T) {
	levels := map[int]log.Level{
		0: log.ErrorLevel,
		1: log.WarnLevel,
		2: log.InfoLevel,
		3: log.DebugLevel,
	}
	for cfgLevel, expected := range levels {
		logger := initLogger(&config.LogStaticCfg{LogLevel: cfgLevel})
		assert.Equal(t, expected, logger.Level)
	}

	assert.Equal(t, log.ErrorLevel, initLogger(&config.LogStaticCfg{LogLevel: 9}).Level)
	assert.Equal(t, log.ErrorLevel, initLogger(&config.LogStaticCfg{LogLevel: -1}).Level)
}

func TestAddFileLogger(t *testing.T) {
	dir := t.TempDir()
	logger := initLogger(&config.LogStaticCfg{LogLevel: 2})
	require.NoError(t, addFileLogger(logger, dir))

	logger.WithField("ip", "8.8.8.8").Warn("written to disk")
	logger.Debug("below the configured level")

	matches, err := filepath.Glob(filepath.Join(dir, "*", "warning.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to disk"`)
	assert.Contains(t, string(data), `"ip":"8.8.8.8"`)

	debug, err := filepath.Glob(filepath.Join(dir, "*", "debug.log"))
	require.NoError(t, err)
	assert.Len(t, debug, 0)
}

func TestNewResourcesWithoutMongo(t *testing.T) {
	conf, err := config.LoadTestingConfig(t.TempDir())
	require.NoError(t, err)

	res, err := newResources(conf)
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.NotNil(t, res.Log)
	res.Close()
}

func TestInitTestResources(t *testing.T) {
	res, hook := InitTestResources(t)
	res.Log.Error("captured")
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "captured", hook.LastEntry().Message)
}
