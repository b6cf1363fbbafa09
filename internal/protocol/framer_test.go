package protocol

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(f *Framer, chunks ...string) []string {
	var out []string
	for _, c := range chunks {
		out = append(out, slices.Collect(f.Feed([]byte(c)))...)
	}
	return out
}

func TestFramer_JoinsFragments(t *testing.T) {
	var f Framer
	assert.Empty(t, slices.Collect(f.Feed([]byte("FOO"))))
	assert.Equal(t, 3, f.Buffered())
	assert.Equal(t, []string{"FOOBAR"}, slices.Collect(f.Feed([]byte("BAR\r\n"))))
	assert.Equal(t, 0, f.Buffered())
}

func TestFramer_SplitDelimiter(t *testing.T) {
	var f Framer
	got := feedAll(&f, "PING a\r", "\nPING b\r\n")
	assert.Equal(t, []string{"PING a", "PING b"}, got)
}

func TestFramer_MultipleLinesOneChunk(t *testing.T) {
	var f Framer
	got := feedAll(&f, "one\r\ntwo\r\nthree\r\npartial")
	assert.Equal(t, []string{"one", "two", "three"}, got)
	assert.Equal(t, len("partial"), f.Buffered())
}

func TestFramer_EmptyLines(t *testing.T) {
	var f Framer
	got := feedAll(&f, "\r\n\r\n")
	assert.Equal(t, []string{"", ""}, got)
	assert.Equal(t, 0, f.Buffered())
}

func TestFramer_BareLFIsNotATerminator(t *testing.T) {
	var f Framer
	assert.Empty(t, feedAll(&f, "a\nb\n"))
	assert.Equal(t, []string{"a\nb\n"}, feedAll(&f, "\r\n"))
}

func TestFramer_EarlyStopKeepsRemainder(t *testing.T) {
	var f Framer
	for line := range f.Feed([]byte("first\r\nsecond\r\ntail")) {
		assert.Equal(t, "first", line)
		break
	}
	assert.Equal(t, []string{"second"}, slices.Collect(f.Feed(nil)))
	assert.Equal(t, len("tail"), f.Buffered())
}

func TestFramer_ResetDuringIteration(t *testing.T) {
	var f Framer
	var got []string
	for line := range f.Feed([]byte("a\r\nb\r\nc")) {
		got = append(got, line)
		f.Reset()
	}
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 0, f.Buffered())
}

// TestFramer_ArbitraryChunking verifies that any split of the input
// produces the same lines as splitting the whole stream on CRLF.
func TestFramer_ArbitraryChunking(t *testing.T) {
	stream := ":n!u@h PRIVMSG #c :hello world\r\nPING :x\r\n\r\n:srv 001 me :Welcome\r\nJOIN #go\r\ntrailing-partial"

	want := strings.Split(stream, "\r\n")
	want = want[:len(want)-1] // the final element has no terminator yet

	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		var chunks []string
		rest := stream
		for rest != "" {
			n := 1 + rng.Intn(len(rest))
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}

		var f Framer
		got := feedAll(&f, chunks...)
		require.Equal(t, want, got, "chunks %q", chunks)
		require.Equal(t, len("trailing-partial"), f.Buffered())
	}
}
