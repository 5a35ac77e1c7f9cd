package websocket

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage_ConcurrentWritesKeepFramesWhole(t *testing.T) {
	// Given: one connection written to from many goroutines at once, the
	// way a timer broadcast races the handler goroutine's response
	server := New(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	var buf bytes.Buffer
	bufrw := bufio.NewReadWriter(bufio.NewReader(&bytes.Buffer{}), bufio.NewWriter(&buf))

	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, server.sendMessage(bufrw, actionStateUpdate, Payload{Reason: "x"}))
		}()
	}
	wg.Wait()

	// Then: the stream parses as exactly that many whole text frames
	data := buf.Bytes()
	frames := 0
	for len(data) > 0 {
		require.GreaterOrEqual(t, len(data), 2)
		require.Equal(t, byte(0x80|opCodeText), data[0])

		length := int(data[1] & 0x7f)
		require.Less(t, length, 126)
		require.GreaterOrEqual(t, len(data), 2+length)

		data = data[2+length:]
		frames++
	}
	assert.Equal(t, writers, frames)
}
