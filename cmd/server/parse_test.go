package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confirm.durgadawaghar.com/internal/intake"
)

func writeMessage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "message.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runParseCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	batch = false
	parseCmd.SetOut(&out)
	t.Cleanup(func() { parseCmd.SetOut(nil) })
	require.NoError(t, parseCmd.ParseFlags(args))
	err := runParse(parseCmd, parseCmd.Flags().Args())
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	path := writeMessage(t, "Пароль: 4821\nПеревод на счет 410011234567890\nСпишется 123,20р.")

	out, err := runParseCmd(t, path)
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.Found)
	assert.Equal(t, "4821", rep.Password)
	assert.Equal(t, "123.20", rep.Amount)
	assert.Len(t, rep.Fields, 3)
}

func TestParseCommandNotFound(t *testing.T) {
	path := writeMessage(t, "Пароль: 4821")

	out, err := runParseCmd(t, path)
	assert.ErrorIs(t, err, errNoConfirmation)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.False(t, rep.Found)
	assert.Equal(t, "not_found", rep.Fields[1].Status)
}

func TestParseCommandBatch(t *testing.T) {
	path := writeMessage(t, "Пароль: 1\n---\nПароль: 4821\nПеревод на счет 410011234567890\nСпишется 5р.")

	out, err := runParseCmd(t, "--batch", path)
	require.NoError(t, err)

	var reps []report
	require.NoError(t, json.Unmarshal([]byte(out), &reps))
	require.Len(t, reps, 2)
	assert.False(t, reps[0].Found)
	assert.True(t, reps[1].Found)
}

func TestParseCommandNormalizesInput(t *testing.T) {
	decomposed := "Пароль: 4821\nПеревод на сче\u0308т 410011234567890\nСпишется 123,20р."
	out, err := runParseCmd(t, writeMessage(t, decomposed))
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.Found)
	assert.Equal(t, "410011234567890", rep.Account)
}

func TestParseCommandRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "invalid utf-8", content: "Пароль: 4821\n\xff\xfe", want: intake.ErrInvalidEncoding},
		{name: "blank", content: " \n\t\n", want: intake.ErrEmptyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runParseCmd(t, writeMessage(t, tt.content))
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, out)
		})
	}
}
