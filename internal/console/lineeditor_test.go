package console

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipedEditor_GetLine(t *testing.T) {
	var out bytes.Buffer
	le := NewPipedEditor(strings.NewReader("/join #go\nhello\n"), &out)
	defer le.Close()

	assert.False(t, le.IsInteractive())

	line, err := le.GetLine("[status] ")
	require.NoError(t, err)
	assert.Equal(t, "/join #go", line)

	line, err = le.GetLine("[#go] ")
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	_, err = le.GetLine("")
	assert.ErrorIs(t, err, io.EOF)

	assert.Empty(t, out.String(), "piped input shows no prompt")
}

func TestPipedEditor_Write(t *testing.T) {
	var out bytes.Buffer
	le := NewPipedEditor(strings.NewReader(""), &out)

	n, err := le.Write([]byte("-!- Connected.\n"))
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, "-!- Connected.\n", out.String())
}

// TestPipedEditor_CloseUnblocks verifies Close ends a GetLine that is
// waiting on a pipe.
func TestPipedEditor_CloseUnblocks(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	le := NewPipedEditor(r, io.Discard)

	done := make(chan error, 1)
	go func() {
		_, err := le.GetLine("")
		done <- err
	}()

	require.NoError(t, le.Close())
	require.NoError(t, le.Close(), "second Close is a no-op")

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("GetLine still blocked after Close")
	}
}

func TestConsole_WritesThroughEditor(t *testing.T) {
	var out bytes.Buffer
	le := NewPipedEditor(strings.NewReader(""), &out)
	c, err := New(le, "utf-8", nil)
	require.NoError(t, err)

	c.OnLog("Connected.")

	assert.Equal(t, "-!- Connected.\n", out.String())
}
