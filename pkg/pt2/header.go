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
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-tttr/pkg/layers"
	"jinr.ru/greenlab/go-tttr/pkg/log"
)

const (
	Ident             = "PicoHarp 300"
	FormatVersion     = "2.0"
	MeasurementModeT2 = 2
	BitsPerRecord     = 32
	// T2TimeUnit is the PicoHarp 300 T2 time tag resolution in seconds
	T2TimeUnit = 4e-12
	MaxBoards  = 4
	// MaxSpecialHeaderWords bounds ImgHdrSize, real T2 files have none
	MaxSpecialHeaderWords = 1 << 20
)

// byte offsets of the validated fields
const (
	identOffset           = 0
	formatVersionOffset   = 16
	bitsPerRecordOffset   = layers.TextHeaderSize + 4
	measurementModeOffset = layers.TextHeaderSize + 20
	// relative to the end of the TTTR header
	numRecordsTailOffset = 8
	imgHdrSizeTailOffset = 4
)

// Header is the decoded PT2 preamble
type Header struct {
	layers.TextHeader   `json:"text"`
	layers.BinaryHeader `json:"binary"`
	Boards              []layers.BoardHeader `json:"boards"`
	layers.TTTRHeader   `json:"tttr"`
	// NativeTimeUnit is seconds per record time tag tick
	NativeTimeUnit float64 `json:"nativeTimeUnit"`
	// Length is the number of bytes the header takes, records start right after it
	Length int64 `json:"length"`
}

// RecordCount returns the number of records the header declares
func (h *Header) RecordCount() int64 {
	return int64(h.NumRecords)
}

func (h *Header) String() string {
	result, err := yaml.Marshal(h)
	if err != nil {
		log.Error("Error occured while marshaling header, %s", err)
		return ""
	}
	return fmt.Sprintf("---\n%s", string(result))
}

// Validate checks that the header is a PicoHarp 300 T2 mode header
func (h *Header) Validate() error {
	if h.Ident != Ident {
		return ErrInvalidFormat{What: fmt.Sprintf("ident %q, want %q", h.Ident, Ident), Offset: identOffset}
	}
	if h.FormatVersion != FormatVersion {
		return ErrInvalidFormat{
			What:   fmt.Sprintf("format version %q, want %q", h.FormatVersion, FormatVersion),
			Offset: formatVersionOffset,
		}
	}
	if h.MeasurementMode != MeasurementModeT2 {
		return ErrInvalidFormat{
			What:   fmt.Sprintf("measurement mode %d, only T2 mode (%d) is supported", h.MeasurementMode, MeasurementModeT2),
			Offset: measurementModeOffset,
		}
	}
	if h.BitsPerRecord != BitsPerRecord {
		return ErrInvalidFormat{
			What:   fmt.Sprintf("%d bits per record, want %d", h.BitsPerRecord, BitsPerRecord),
			Offset: bitsPerRecordOffset,
		}
	}
	if h.NumberOfBoards < 1 {
		return ErrInvalidFormat{What: "no board header", Offset: layers.NumberOfBoardsOffset}
	}
	return nil
}

// readHeaderBytes extends buf up to length bytes from r
func readHeaderBytes(r io.Reader, buf []byte, length int) ([]byte, error) {
	have := len(buf)
	if cap(buf) < length {
		grown := make([]byte, have, length)
		copy(grown, buf)
		buf = grown
	}
	buf = buf[:length]
	n, err := io.ReadFull(r, buf[have:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedHeader{Offset: int64(have + n), Want: int64(length)}
		}
		return nil, fmt.Errorf("reading header at byte offset %d: %w", have+n, err)
	}
	return buf, nil
}

// ReadHeader reads the PT2 header and leaves r positioned at the first record.
// With validate the header must describe a PicoHarp 300 T2 measurement.
func ReadHeader(r io.Reader, validate bool) (*Header, error) {
	buf, err := readHeaderBytes(r, nil, layers.PrefixSize)
	if err != nil {
		return nil, err
	}

	boards := layers.BoardCount(buf)
	if boards < 0 || boards > MaxBoards {
		return nil, ErrInvalidFormat{
			What:   fmt.Sprintf("number of boards %d out of range [0, %d]", boards, MaxBoards),
			Offset: layers.NumberOfBoardsOffset,
		}
	}
	length := layers.HeaderLength(int(boards), 0)
	buf, err = readHeaderBytes(r, buf, length)
	if err != nil {
		return nil, err
	}

	numRecords := int32(binary.LittleEndian.Uint32(buf[length-numRecordsTailOffset:]))
	if numRecords < 0 {
		return nil, ErrInvalidFormat{
			What:   fmt.Sprintf("negative number of records %d", numRecords),
			Offset: int64(length - numRecordsTailOffset),
		}
	}
	imgHdrSize := layers.SpecialHeaderWords(buf[length-layers.TTTRHeaderSize:])
	if imgHdrSize < 0 || imgHdrSize > MaxSpecialHeaderWords {
		return nil, ErrInvalidFormat{
			What:   fmt.Sprintf("special header size %d out of range [0, %d]", imgHdrSize, MaxSpecialHeaderWords),
			Offset: int64(length - imgHdrSizeTailOffset),
		}
	}
	length = layers.HeaderLength(int(boards), int(imgHdrSize))
	buf, err = readHeaderBytes(r, buf, length)
	if err != nil {
		return nil, err
	}

	layer := &layers.HeaderLayer{}
	if err := layer.DecodeFromBytes(buf, gopacket.NilDecodeFeedback); err != nil {
		return nil, ErrInvalidFormat{What: err.Error(), Offset: 0}
	}
	h := &Header{
		TextHeader:     layer.TextHeader,
		BinaryHeader:   layer.BinaryHeader,
		Boards:         layer.Boards,
		TTTRHeader:     layer.TTTRHeader,
		NativeTimeUnit: T2TimeUnit,
		Length:         int64(length),
	}
	log.Debug("ReadHeader: ident: %s version: %s mode: %d boards: %d records: %d length: %d",
		h.Ident, h.FormatVersion, h.MeasurementMode, h.NumberOfBoards, h.NumRecords, h.Length)

	if validate {
		if err := h.Validate(); err != nil {
			return nil, err
		}
	}
	return h, nil
}
