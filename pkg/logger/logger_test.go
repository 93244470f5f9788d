package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacarta/lacarta/pkg/logger"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	log, err := logger.New().ToBuffer(buff).Make()
	require.NoError(t, err)
	require.NotNil(t, log)
	require.Equal(t, 0, buff.Len())

	log.Logger.Info().Msg("sync started")
	require.Contains(t, buff.String(), "sync started")
	require.NoError(t, log.Close())
}

func TestLogLevel(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	log, err := logger.New().ToBuffer(buff).Level("warn").Make()
	require.NoError(t, err)

	log.Logger.Info().Msg("suppressed")
	require.Equal(t, 0, buff.Len())

	log.Logger.Warn().Msg("visible")
	require.Contains(t, buff.String(), "visible")
}
