package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("debug", "json", &buf))
	t.Cleanup(func() { Setup("info", "text", nil) })

	log.WithFields(log.Fields{"request_id": "r1"}).Debug("calculation finished")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "r1", entry["request_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestSetupRejectsLevel(t *testing.T) {
	assert.Error(t, Setup("loud", "text", nil))
}
