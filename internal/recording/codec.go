// Package recording stores host event streams as CBOR sequences so detection
// problems can be replayed offline.
//
// A recording is a header item followed by one record per event. Times are
// stored as offsets from the header's start time.
package recording

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("recording: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("recording: CBOR decoder initialization failed: " + err.Error())
	}
}

func newEncoder(w io.Writer) *cbor.Encoder { return encMode.NewEncoder(w) }

func newDecoder(r io.Reader) *cbor.Decoder { return decMode.NewDecoder(r) }
