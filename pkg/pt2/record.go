/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package pt2

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-tttr/pkg/layers"
	"jinr.ru/greenlab/go-tttr/pkg/log"
)

const (
	RecordSize = layers.RecordSize
	// T2WrapAround is the number of time tag ticks between two overflow records
	T2WrapAround = 210698240
)

// Record is one decoded T2 event record
type Record struct {
	Time    uint32
	Channel uint8
	// Special records carry a counter overflow or external markers instead of a photon
	Special bool
}

// Overflow reports whether the record marks a time tag counter overflow
func (r Record) Overflow() bool {
	return r.Special && r.Time == 0
}

// Markers returns the external marker bits of a marker record
func (r Record) Markers() uint8 {
	if !r.Special {
		return 0
	}
	return uint8(r.Time & layers.MarkerMask)
}

// Decoder reads records one word at a time. It is single pass.
type Decoder struct {
	r      io.Reader
	offset int64
	word   [RecordSize]byte
	layer  layers.RecordLayer
}

// NewDecoder returns a decoder reading records from r.
// offset is the byte offset of r within the file and is only used in errors.
func NewDecoder(r io.Reader, offset int64) *Decoder {
	return &Decoder{
		r:      r,
		offset: offset,
	}
}

// Offset returns the byte offset of the next record
func (d *Decoder) Offset() int64 {
	return d.offset
}

// Next returns the next record. At a clean end of stream it returns io.EOF,
// a trailing fragment shorter than a record gives ErrTruncatedRecord.
func (d *Decoder) Next() (Record, error) {
	n, err := io.ReadFull(d.r, d.word[:])
	switch {
	case errors.Is(err, io.EOF):
		return Record{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return Record{}, ErrTruncatedRecord{Offset: d.offset, Length: n}
	case err != nil:
		return Record{}, fmt.Errorf("reading record at byte offset %d: %w", d.offset, err)
	}

	if err := d.layer.DecodeFromBytes(d.word[:], gopacket.NilDecodeFeedback); err != nil {
		return Record{}, ErrTruncatedRecord{Offset: d.offset, Length: n}
	}
	record := Record{
		Time:    d.layer.Time,
		Channel: d.layer.Channel,
		Special: d.layer.Special(),
	}
	if log.Enabled(log.DebugLevel) {
		log.Debug("Decoder.Next: offset: %d word: %08x channel: %d time: %d special: %t",
			d.offset, d.layer.Word(), record.Channel, record.Time, record.Special)
	}
	d.offset += RecordSize
	return record, nil
}
