package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEventsParsesStream(t *testing.T) {
	body := "event: connected\ndata: {\"status\":\"connected\"}\n\n" +
		": comment\n\n" +
		"event: level_up\ndata: line1\ndata: line2\n\n"

	var events []SSEEvent
	err := readEvents(strings.NewReader(body), func(e SSEEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "connected", events[0].Event)
	assert.Equal(t, `{"status":"connected"}`, events[0].Data)
	assert.Equal(t, "level_up", events[1].Event)
	assert.Equal(t, "line1\nline2", events[1].Data)
}

func TestReadEventsIgnoresIncompleteTrailingEvent(t *testing.T) {
	var events []SSEEvent
	err := readEvents(strings.NewReader("event: x\ndata: y\n"), func(e SSEEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPrintEventTruncatesText(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, SSEEvent{Event: "card_generated", Data: strings.Repeat("a", 150)}, false)

	out := buf.String()
	assert.Contains(t, out, "card_generated: ")
	assert.Contains(t, out, strings.Repeat("a", 100)+"...")
	assert.NotContains(t, out, strings.Repeat("a", 101))
}

func TestPrintEventJSON(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, SSEEvent{Event: "level_up", Data: "{}"}, true)
	assert.Contains(t, buf.String(), `"event":"level_up"`)
}
