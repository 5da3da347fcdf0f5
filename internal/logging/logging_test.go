// ABOUTME: Tests for logger setup
// ABOUTME: Checks level parsing and file output
package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	closeLog, err := Setup("warn", "", nil)
	require.NoError(t, err)
	defer closeLog()
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	_, err = Setup("loud", "", nil)
	assert.Error(t, err)
}

func TestSetupEmptyLevelDefaultsToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	closeLog, err := Setup("", "", nil)
	require.NoError(t, err)
	defer closeLog()
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetupWritesFileAndConsole(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	path := filepath.Join(t.TempDir(), "tonetable.log")
	var console bytes.Buffer

	closeLog, err := Setup("debug", path, &console)
	require.NoError(t, err)

	log.Info().Str("note", "A").Int("octave", 4).Msg("playing")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "playing", entry["message"])
	assert.Equal(t, "A", entry["note"])

	assert.Contains(t, console.String(), "playing")
}
