package recording

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/appengine-ltd/warpctx/internal/detect"
)

// FormatVersion is written into every header.
const FormatVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported recording version")

type Header struct {
	Version int    `cbor:"version"`
	Started string `cbor:"started"`
	Session string `cbor:"session,omitempty"`
	Note    string `cbor:"note,omitempty"`
}

type record struct {
	Offset int64        `cbor:"t"`
	Event  detect.Event `cbor:"e"`
}

// Writer appends events to a recording. Not safe for concurrent use.
type Writer struct {
	enc   *cbor.Encoder
	start time.Time
	count int
}

// NewWriter writes the header for a recording that starts at start.
func NewWriter(w io.Writer, start time.Time, session, note string) (*Writer, error) {
	enc := newEncoder(w)
	h := Header{
		Version: FormatVersion,
		Started: start.UTC().Format(time.RFC3339Nano),
		Session: session,
		Note:    note,
	}
	if err := enc.Encode(h); err != nil {
		return nil, fmt.Errorf("writing recording header: %w", err)
	}
	return &Writer{enc: enc, start: start}, nil
}

// Write records ev. Events without a time are stamped with the start time.
func (w *Writer) Write(ev detect.Event) error {
	var offset time.Duration
	if !ev.At.IsZero() {
		offset = ev.At.Sub(w.start)
	}
	if err := w.enc.Encode(record{Offset: int64(offset), Event: ev}); err != nil {
		return fmt.Errorf("writing event %d (%s): %w", w.count, ev.Kind, err)
	}
	w.count++
	return nil
}

func (w *Writer) Count() int { return w.count }

// Reader reads a recording written by Writer.
type Reader struct {
	dec    *cbor.Decoder
	header Header
	start  time.Time
	count  int
}

func NewReader(r io.Reader) (*Reader, error) {
	dec := newDecoder(r)
	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("reading recording header: %w", err)
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	start, err := time.Parse(time.RFC3339Nano, h.Started)
	if err != nil {
		return nil, fmt.Errorf("reading recording header: start time: %w", err)
	}
	return &Reader{dec: dec, header: h, start: start}, nil
}

func (r *Reader) Header() Header { return r.header }

func (r *Reader) Start() time.Time { return r.start }

// Next returns the next event with its At time restored. It returns io.EOF
// after the last event.
func (r *Reader) Next() (detect.Event, error) {
	var rec record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return detect.Event{}, io.EOF
		}
		return detect.Event{}, fmt.Errorf("reading event %d: %w", r.count, err)
	}
	r.count++
	ev := rec.Event
	ev.At = r.start.Add(time.Duration(rec.Offset))
	return ev, nil
}

// ReadAll returns every remaining event.
func (r *Reader) ReadAll() ([]detect.Event, error) {
	var out []detect.Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
}
