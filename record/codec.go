package record

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// maxLineSize bounds a single JSON-lines record.
const maxLineSize = 16 * 1024 * 1024

// LineError reports a malformed JSON-lines record.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("record: line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }

// Reader lazily decodes one JSON object per line. It satisfies
// stream.Iterator[Record].
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewReader creates a Reader over r. If r is an io.Closer it is closed by Close.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	rd := &Reader{scanner: sc}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

// Next returns the next record; blank lines are skipped.
func (r *Reader) Next(ctx context.Context) (Record, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Record{}, false, err
		}
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return Record{}, false, &LineError{Line: r.line + 1, Err: err}
			}
			return Record{}, false, nil
		}
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := Unmarshal(line)
		if err != nil {
			return Record{}, false, &LineError{Line: r.line, Err: err}
		}
		return rec, true, nil
	}
}

// Close releases the underlying reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// ReadAll decodes every record from r.
func ReadAll(ctx context.Context, r io.Reader) (Table, error) {
	rd := NewReader(r)
	defer rd.Close()
	var t Table
	for {
		rec, ok, err := rd.Next(ctx)
		if err != nil {
			return t, err
		}
		if !ok {
			return t, nil
		}
		t = append(t, rec)
	}
}

// Unmarshal decodes a single JSON object, keeping its column order.
// Integral numbers become int64, other numbers float64.
func Unmarshal(data []byte) (Record, error) {
	order, err := objectKeys(data)
	if err != nil {
		return Record{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return Record{}, err
	}
	b := NewBuilder(len(order))
	for _, name := range order {
		b.Set(name, fromJSON(values[name]))
	}
	return b.Record(), nil
}

// objectKeys lists the top-level keys of a JSON object in document order.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}
	var keys []string
	depth, expectKey := 1, true
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
				if depth == 1 {
					expectKey = true
				}
			}
			continue
		}
		if depth != 1 {
			continue
		}
		if expectKey {
			if name, ok := tok.(string); ok {
				keys = append(keys, name)
			}
			expectKey = false
		} else {
			expectKey = true
		}
	}
	return keys, nil
}

func fromJSON(v any) Value {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// Marshal encodes a record as a JSON object in column order.
func Marshal(r Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) { return Marshal(r) }

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// Writer writes records as JSON lines.
type Writer struct {
	w     *bufio.Writer
	count int
}

// NewWriter creates a Writer over w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write encodes one record followed by a newline.
func (w *Writer) Write(r Record) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	w.count++
	return w.w.WriteByte('\n')
}

// WriteTable encodes every record of t.
func (w *Writer) WriteTable(t Table) error {
	for _, r := range t {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int { return w.count }

// Flush writes any buffered data.
func (w *Writer) Flush() error { return w.w.Flush() }
