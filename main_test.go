// ABOUTME: Tests for CLI helpers
// ABOUTME: Covers table printing, verification output and flag parsing helpers
package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Resonate-Protocol/tonetable/pkg/audio/tone"
)

func TestScaleNotes(t *testing.T) {
	assert.Equal(t, tone.CMajor, scaleNotes("major"))
	assert.Equal(t, []string{"C", "Eb", "G"}, scaleNotes("C, Eb,,G"))
	assert.Empty(t, scaleNotes(""))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf)

	out := buf.String()
	assert.Contains(t, out, "Note")
	assert.Contains(t, out, "261.63")
	assert.Contains(t, out, "7902.13")
	assert.Contains(t, out, "Db")
}

func TestVerifyOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, verify(&buf))
	assert.Contains(t, buf.String(), "all 153 entries match")
}
