package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vanderheijden86/laneboard/pkg/board"
)

// maxLine bounds a single script line.
const maxLine = 1024 * 1024

// ErrLineTooLong is the LineError cause for a line longer than maxLine.
var ErrLineTooLong = errors.New("line exceeds 1 MiB")

// LineError is a decode failure at a 1-based script line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ScriptLine is one decoded action and where it came from.
type ScriptLine struct {
	Line   int
	Action board.Action
}

// Decoder reads a JSONL action script. Blank lines and lines starting with
// '#' are skipped.
type Decoder struct {
	r    *bufio.Reader
	line int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next action. It returns io.EOF after the last one and a
// *LineError for a line that does not decode or is too long; decoding may
// continue after a LineError.
func (d *Decoder) Next() (ScriptLine, error) {
	for {
		line, tooLong, err := d.readLine()
		if err != nil {
			if err == io.EOF {
				return ScriptLine{}, io.EOF
			}
			return ScriptLine{}, fmt.Errorf("read script: %w", err)
		}
		d.line++
		if tooLong {
			return ScriptLine{}, &LineError{Line: d.line, Err: ErrLineTooLong}
		}
		if d.line == 1 {
			line = stripBOM(line)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		a, err := UnmarshalAction(line)
		if err != nil {
			return ScriptLine{}, &LineError{Line: d.line, Err: err}
		}
		return ScriptLine{Line: d.line, Action: a}, nil
	}
}

// readLine returns the next line, newline included. An over-long line is
// consumed in full but not returned. io.EOF is returned only when no bytes
// are left.
func (d *Decoder) readLine() (line []byte, tooLong bool, err error) {
	read := 0
	for {
		frag, rerr := d.r.ReadSlice('\n')
		read += len(frag)
		if !tooLong {
			if len(line)+len(frag) > maxLine+1 {
				tooLong, line = true, nil
			} else {
				line = append(line, frag...)
			}
		}
		switch {
		case rerr == bufio.ErrBufferFull:
			continue
		case rerr == io.EOF && read > 0:
			return line, tooLong, nil
		default:
			return line, tooLong, rerr
		}
	}
}

// Lines returns how many lines have been consumed so far.
func (d *Decoder) Lines() int { return d.line }

// ReadScript decodes a whole script, stopping at the first bad line.
func ReadScript(r io.Reader) ([]board.Action, error) {
	dec := NewDecoder(r)
	var out []board.Action
	for {
		sl, err := dec.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, sl.Action)
	}
}

// WriteScript encodes actions as JSONL.
func WriteScript(w io.Writer, actions ...board.Action) error {
	bw := bufio.NewWriter(w)
	for i, a := range actions {
		data, err := MarshalAction(a)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		bw.Write(data)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}
