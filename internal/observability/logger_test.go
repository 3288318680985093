package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"student-agent/internal/config"
)

func TestLogger_TagsServiceAndEnv(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{AppEnv: "prod", ServiceName: "student-agent"})

	logger.Debug("hidden")
	logger.Info("visible", "student", "stu-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "visible", line["msg"])
	require.Equal(t, "student-agent", line["service"])
	require.Equal(t, "prod", line["env"])
	require.Equal(t, "stu-1", line["student"])
}

func TestLogger_DebugInDev(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{AppEnv: "dev"})

	logger.Debug("trace")
	require.Contains(t, buf.String(), `"level":"DEBUG"`)
	require.NotNil(t, SetupLogger(config.Config{AppEnv: "dev"}))
}
