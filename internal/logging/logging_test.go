package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whts/whts-go/internal/logging"
)

func TestNewRespectsLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "warn")

	log.Info().Msg("should be filtered out")
	require.Empty(t, buf.String())

	log.Warn().Msg("should appear")
	require.Contains(t, buf.String(), "should appear")
}

func TestNewDefaultsUnknownLevelToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "not-a-real-level")

	log.Info().Msg("visible at info")
	require.Contains(t, buf.String(), "visible at info")

	buf.Reset()
	log.Debug().Msg("hidden below info")
	require.Empty(t, buf.String())
}
