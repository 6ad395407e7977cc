package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
		wantInfo  bool
	}{
		{name: "quiet", verbose: false},
		{name: "verbose", verbose: true, wantDebug: true, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.verbose, false)

			logger.Debug("debug line")
			logger.Info("info line")
			logger.Warn("warn line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug line"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info line"))
			assert.Contains(t, out, "warn line")
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false, true)

	logger.Warn("restore failed", "branch", "feature")

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "restore failed", record["msg"])
	assert.Equal(t, "feature", record["branch"])
}
