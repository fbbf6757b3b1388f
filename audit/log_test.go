package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAppendsJSONLines(t *testing.T) {
	log, err := OpenLog(t.TempDir(), "t1", nil)
	require.NoError(t, err)
	defer log.Close()

	log.Append(Entry{
		At:      time.Now().UTC(),
		TableID: "t1",
		HandID:  "h1",
		Stage:   "preflop",
		Event:   "ACTION_APPLIED",
		SeatID:  "alice",
		Action:  "raise",
		Amount:  60,
		Pot:     90,
		Stacks:  map[string]int{"alice": 440, "bob": 480},
	})
	log.Append(Entry{At: time.Now().UTC(), TableID: "t1", Stage: "showdown", Event: "HAND_ENDED"})

	file, err := os.Open(log.Path())
	require.NoError(t, err)
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, entries, 2)
	assert.Equal(t, "ACTION_APPLIED", entries[0].Event)
	assert.Equal(t, "alice", entries[0].SeatID)
	assert.Equal(t, 60, entries[0].Amount)
	assert.Equal(t, 440, entries[0].Stacks["alice"])
	assert.Equal(t, "HAND_ENDED", entries[1].Event)
}

func TestLogReopenAppends(t *testing.T) {
	dir := t.TempDir()

	log, err := OpenLog(dir, "t1", nil)
	require.NoError(t, err)
	log.Append(Entry{TableID: "t1", Event: "HAND_STARTED"})
	path := log.Path()
	require.NoError(t, log.Close())

	log, err = OpenLog(dir, "t1", nil)
	require.NoError(t, err)
	log.Append(Entry{TableID: "t1", Event: "HAND_ENDED"})
	assert.Equal(t, path, log.Path())
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(data))
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
