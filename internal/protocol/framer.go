package protocol

import (
	"bytes"
	"iter"
)

var crlf = []byte("\r\n")

// Framer splits a byte stream into CRLF-terminated lines.  Bytes of a
// line whose terminator has not arrived yet stay buffered until a later
// Feed completes it.
//
// A Framer is not safe for concurrent use.
type Framer struct {
	buf   []byte
	epoch int // bumped by Reset so an in-flight sequence stops cleanly
}

// Feed appends p to the buffer and returns the complete lines now
// available, in arrival order, with the terminator stripped.  Lines are
// extracted lazily while the sequence is ranged over; if iteration stops
// early the remaining lines stay buffered and are produced by the next
// sequence.  Empty lines are yielded as "".
func (f *Framer) Feed(p []byte) iter.Seq[string] {
	f.buf = append(f.buf, p...)
	return f.lines
}

// Buffered returns the number of bytes held back as a partial line.
func (f *Framer) Buffered() int { return len(f.buf) }

// Reset drops everything buffered.  A sequence being ranged over when
// Reset is called yields nothing further.
func (f *Framer) Reset() {
	f.buf = nil
	f.epoch++
}

func (f *Framer) lines(yield func(string) bool) {
	pos, epoch := 0, f.epoch
	defer func() {
		if f.epoch != epoch {
			return
		}
		n := copy(f.buf, f.buf[pos:])
		f.buf = f.buf[:n]
	}()

	for f.epoch == epoch {
		i := bytes.Index(f.buf[pos:], crlf)
		if i < 0 {
			return
		}
		line := string(f.buf[pos : pos+i])
		pos += i + len(crlf)
		if !yield(line) {
			return
		}
	}
}
