package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func card(classID int) string {
	return `{"appId":753,"contextId":6,"classId":` + strconv.Itoa(classID) +
		`,"amount":1,"realAppId":440,"type":"TradingCard","rarity":"Common"}`
}

func TestCommand(t *testing.T) {
	rq := require.New(t)

	give := writeJSON(t, "give.json", "["+card(1)+"]")
	receive := writeJSON(t, "receive.json", "["+card(2)+"]")
	inventory := writeJSON(t, "inventory.json", "["+card(1)+","+card(1)+"]")

	testCases := []struct {
		name   string
		args   []string
		output string
		err    bool
	}{
		{
			name:   "Without inventory",
			args:   []string{"--give", give, "--receive", receive},
			output: "fair exchange:      true\n",
		},
		{
			name:   "With inventory",
			args:   []string{"--give", give, "--receive", receive, "--inventory", inventory},
			output: "fair exchange:      true\nneutral or better:  true\n",
		},
		{
			name:   "Json output",
			args:   []string{"--give", give, "--receive", receive, "--inventory", inventory, "--format", "json"},
			output: `{"fairExchange":true,"neutralOrBetter":true}` + "\n",
		},
		{
			name:   "Json output without inventory",
			args:   []string{"--give", give, "--receive", receive, "--format", "json"},
			output: `{"fairExchange":true}` + "\n",
		},
		{
			name: "Empty give",
			args: []string{"--receive", receive},
			err:  true,
		},
		{
			name: "Unknown format",
			args: []string{"--give", give, "--receive", receive, "--format", "yaml"},
			err:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			var out bytes.Buffer

			cmd := newRootCommand()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tc.args)

			err := cmd.Execute()
			if tc.err {
				rq.Error(err)
				return
			}

			rq.NoError(err)
			rq.Equal(tc.output, out.String())
		})
	}
}
