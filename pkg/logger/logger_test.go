package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.Empty(t, DefaultConfig().Validate())
	require.Len(t, Config{Level: "loud"}.Validate(), 1)
}

func TestMergeContexts(t *testing.T) {
	merged := MergeContexts(
		Context{"file": "a.yml", "key": "model"},
		Context{"key": "loss"},
	)
	require.Equal(t, Context{"file": "a.yml", "key": "loss"}, merged)
}

func TestSetLogrusJSON(t *testing.T) {
	defer SetLogrus(*DefaultConfig())
	defer SetOutput(logrus.StandardLogger().Out)

	var buf bytes.Buffer
	SetLogrus(Config{Level: "warn", JSON: true})
	SetOutput(&buf)

	Context{"file": "a.yml"}.Entry().Info("dropped")
	require.Empty(t, buf.String())

	Context{"file": "a.yml"}.Entry().Warn("duplicate key")
	require.Contains(t, buf.String(), `"file":"a.yml"`)
	require.Contains(t, buf.String(), `"msg":"duplicate key"`)
}
