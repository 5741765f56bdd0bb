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

package layers

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// HeaderLayerNum identifies the layer
	HeaderLayerNum = 2100
)

// PicoHarp 300 PT2 file format version 2.0
// Every integer is int32 little endian, every string is a NUL padded char array.
const (
	TextHeaderSize   = 328
	BinaryHeaderSize = 208
	BoardHeaderSize  = 156
	TTTRHeaderSize   = 36
	// PrefixSize is the part of the header which does not depend on any header field
	PrefixSize = TextHeaderSize + BinaryHeaderSize
	// NumberOfBoardsOffset is where the number of board headers is stored inside the prefix
	NumberOfBoardsOffset = TextHeaderSize + 12
	// ImgHdrSizeOffset is where the special header size is stored inside the TTTR header
	ImgHdrSizeOffset = 32
)

// text header field sizes
const (
	identSize          = 16
	formatVersionSize  = 6
	creatorNameSize    = 18
	creatorVersionSize = 12
	fileTimeSize       = 18
	crlfSize           = 2
	commentSize        = 256
	scriptNameSize     = 20
	hardwareIdentSize  = 16
	hardwareVerSize    = 8
)

type TextHeader struct {
	Ident          string `json:"ident"`
	FormatVersion  string `json:"formatVersion"`
	CreatorName    string `json:"creatorName"`
	CreatorVersion string `json:"creatorVersion"`
	FileTime       string `json:"fileTime"`
	Comment        string `json:"comment,omitempty"`
}

type BinaryHeader struct {
	Curves          int32 `json:"curves"`
	BitsPerRecord   int32 `json:"bitsPerRecord"`
	RoutingChannels int32 `json:"routingChannels"`
	NumberOfBoards  int32 `json:"numberOfBoards"`
	ActiveCurve     int32 `json:"activeCurve"`
	MeasurementMode int32 `json:"measurementMode"`
	SubMode         int32 `json:"subMode"`
	RangeNo         int32 `json:"rangeNo"`
	Offset          int32 `json:"offset"`
	// Tacq is the acquisition time in ms
	Tacq            int32  `json:"tacq"`
	StopAt          int32  `json:"stopAt"`
	StopOnOvfl      int32  `json:"stopOnOvfl"`
	Restart         int32  `json:"restart"`
	RepeatMode      int32  `json:"repeatMode"`
	RepeatsPerCurve int32  `json:"repeatsPerCurve"`
	RepeatTime      int32  `json:"repeatTime"`
	RepeatWaitTime  int32  `json:"repeatWaitTime"`
	ScriptName      string `json:"scriptName,omitempty"`
}

type BoardHeader struct {
	HardwareIdent   string `json:"hardwareIdent"`
	HardwareVersion string `json:"hardwareVersion"`
	HardwareSerial  int32  `json:"hardwareSerial"`
	SyncDivider     int32  `json:"syncDivider"`
	CFDZeroCross0   int32  `json:"cfdZeroCross0"`
	CFDLevel0       int32  `json:"cfdLevel0"`
	CFDZeroCross1   int32  `json:"cfdZeroCross1"`
	CFDLevel1       int32  `json:"cfdLevel1"`
	// Resolution is the histogram bin width in ns, it is not the T2 time tag unit
	Resolution      float32 `json:"resolution"`
	RouterModelCode int32   `json:"routerModelCode"`
	RouterEnabled   int32   `json:"routerEnabled"`
}

type TTTRHeader struct {
	ExtDevices int32 `json:"extDevices"`
	CntRate0   int32 `json:"cntRate0"`
	CntRate1   int32 `json:"cntRate1"`
	StopAfter  int32 `json:"stopAfter"`
	StopReason int32 `json:"stopReason"`
	NumRecords int32 `json:"numRecords"`
	// ImgHdrSize is the number of 32 bit words of the special header
	ImgHdrSize int32 `json:"imgHdrSize"`
}

// HeaderLayer is the whole PT2 preamble up to the first record
type HeaderLayer struct {
	layers.BaseLayer
	TextHeader
	BinaryHeader
	Boards []BoardHeader
	TTTRHeader
	// SpecialHeader is passed through undecoded
	SpecialHeader []uint32
}

var HeaderLayerType gopacket.LayerType

func init() {
	HeaderLayerType = gopacket.RegisterLayerType(HeaderLayerNum,
		gopacket.LayerTypeMetadata{Name: "PT2HeaderLayerType", Decoder: gopacket.DecodeFunc(decodeHeaderLayer)})
}

// LayerType returns the type of the PT2 header layer in the layer catalog
func (h *HeaderLayer) LayerType() gopacket.LayerType {
	return HeaderLayerType
}

func (h *HeaderLayer) CanDecode() gopacket.LayerClass {
	return HeaderLayerType
}

// NextLayerType returns the record layer, records follow the header immediately
func (h *HeaderLayer) NextLayerType() gopacket.LayerType {
	return RecordLayerType
}

// HeaderLength returns the number of bytes of a header with given number
// of board headers and special header words
func HeaderLength(boards, imgHdrSize int) int {
	return PrefixSize + boards*BoardHeaderSize + TTTRHeaderSize + imgHdrSize*4
}

// BoardCount reads NumberOfBoards from the first PrefixSize bytes of a header
func BoardCount(prefix []byte) int32 {
	return int32(binary.LittleEndian.Uint32(prefix[NumberOfBoardsOffset : NumberOfBoardsOffset+4]))
}

// SpecialHeaderWords reads ImgHdrSize from a TTTR header
func SpecialHeaderWords(tttr []byte) int32 {
	return int32(binary.LittleEndian.Uint32(tttr[ImgHdrSizeOffset : ImgHdrSizeOffset+4]))
}

type fieldReader struct {
	data   []byte
	offset int
}

func (r *fieldReader) int32() int32 {
	v := int32(binary.LittleEndian.Uint32(r.data[r.offset : r.offset+4]))
	r.offset += 4
	return v
}

func (r *fieldReader) float32() float32 {
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.offset : r.offset+4]))
	r.offset += 4
	return v
}

func (r *fieldReader) string(size int) string {
	v := cString(r.data[r.offset : r.offset+size])
	r.offset += size
	return v
}

func (r *fieldReader) skip(size int) {
	r.offset += size
}

type fieldWriter struct {
	data   []byte
	offset int
}

func (w *fieldWriter) int32(v int32) {
	binary.LittleEndian.PutUint32(w.data[w.offset:w.offset+4], uint32(v))
	w.offset += 4
}

func (w *fieldWriter) float32(v float32) {
	binary.LittleEndian.PutUint32(w.data[w.offset:w.offset+4], math.Float32bits(v))
	w.offset += 4
}

// string writes at most size-1 bytes, the field always stays NUL terminated
func (w *fieldWriter) string(v string, size int) {
	field := w.data[w.offset : w.offset+size]
	for i := range field {
		field[i] = 0
	}
	copy(field[:size-1], v)
	w.offset += size
}

func (w *fieldWriter) skip(size int) {
	for i := w.offset; i < w.offset+size; i++ {
		w.data[i] = 0
	}
	w.offset += size
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimSpace(b))
}

func (h *HeaderLayer) decodeText(r *fieldReader) {
	h.Ident = r.string(identSize)
	h.FormatVersion = r.string(formatVersionSize)
	h.CreatorName = r.string(creatorNameSize)
	h.CreatorVersion = r.string(creatorVersionSize)
	h.FileTime = r.string(fileTimeSize)
	r.skip(crlfSize)
	h.Comment = r.string(commentSize)
}

func (h *HeaderLayer) decodeBinary(r *fieldReader) {
	h.Curves = r.int32()
	h.BitsPerRecord = r.int32()
	h.RoutingChannels = r.int32()
	h.NumberOfBoards = r.int32()
	h.ActiveCurve = r.int32()
	h.MeasurementMode = r.int32()
	h.SubMode = r.int32()
	h.RangeNo = r.int32()
	h.Offset = r.int32()
	h.Tacq = r.int32()
	h.StopAt = r.int32()
	h.StopOnOvfl = r.int32()
	h.Restart = r.int32()
	// DispLinLog, DispTimeFrom/To, DispCountsFrom/To, DispCurves[8], Params[3]
	r.skip(5*4 + 8*8 + 3*12)
	h.RepeatMode = r.int32()
	h.RepeatsPerCurve = r.int32()
	h.RepeatTime = r.int32()
	h.RepeatWaitTime = r.int32()
	h.ScriptName = r.string(scriptNameSize)
}

func decodeBoard(r *fieldReader) BoardHeader {
	b := BoardHeader{}
	b.HardwareIdent = r.string(hardwareIdentSize)
	b.HardwareVersion = r.string(hardwareVerSize)
	b.HardwareSerial = r.int32()
	b.SyncDivider = r.int32()
	b.CFDZeroCross0 = r.int32()
	b.CFDLevel0 = r.int32()
	b.CFDZeroCross1 = r.int32()
	b.CFDLevel1 = r.int32()
	b.Resolution = r.float32()
	b.RouterModelCode = r.int32()
	b.RouterEnabled = r.int32()
	// four router channels: InputType, InputLevel, InputEdge, CFDPresent, CFDLevel, CFDZeroCross
	r.skip(4 * 6 * 4)
	return b
}

func (h *HeaderLayer) decodeTTTR(r *fieldReader) {
	h.ExtDevices = r.int32()
	r.skip(2 * 4)
	h.CntRate0 = r.int32()
	h.CntRate1 = r.int32()
	h.StopAfter = r.int32()
	h.StopReason = r.int32()
	h.NumRecords = r.int32()
	h.ImgHdrSize = r.int32()
}

// DecodeFromBytes decodes a complete header. The data must contain all board
// headers and the special header, anything after them becomes the layer payload.
func (h *HeaderLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < PrefixSize {
		df.SetTruncated()
		return ErrTooShort{What: "PT2 header", Want: PrefixSize, Got: len(data)}
	}
	r := &fieldReader{data: data}
	h.decodeText(r)
	h.decodeBinary(r)

	if h.NumberOfBoards < 0 {
		return ErrBadField{Field: "NumberOfBoards", Value: int64(h.NumberOfBoards)}
	}
	length := HeaderLength(int(h.NumberOfBoards), 0)
	if len(data) < length {
		df.SetTruncated()
		return ErrTooShort{What: "PT2 header", Want: length, Got: len(data)}
	}
	h.Boards = make([]BoardHeader, 0, h.NumberOfBoards)
	for i := 0; i < int(h.NumberOfBoards); i++ {
		h.Boards = append(h.Boards, decodeBoard(r))
	}
	h.decodeTTTR(r)

	if h.ImgHdrSize < 0 {
		return ErrBadField{Field: "ImgHdrSize", Value: int64(h.ImgHdrSize)}
	}
	length = HeaderLength(int(h.NumberOfBoards), int(h.ImgHdrSize))
	if len(data) < length {
		df.SetTruncated()
		return ErrTooShort{What: "PT2 special header", Want: length, Got: len(data)}
	}
	h.SpecialHeader = make([]uint32, h.ImgHdrSize)
	for i := range h.SpecialHeader {
		h.SpecialHeader[i] = uint32(r.int32())
	}

	h.BaseLayer = layers.BaseLayer{
		Contents: data[:length],
		Payload:  data[length:],
	}
	return nil
}

// SerializeTo appends the header to the SerializeBuffer.
// With FixLengths the board and special header counts are taken from the slices.
func (h *HeaderLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	if opts.FixLengths {
		h.NumberOfBoards = int32(len(h.Boards))
		h.ImgHdrSize = int32(len(h.SpecialHeader))
	}
	if int(h.NumberOfBoards) != len(h.Boards) {
		return ErrBadField{Field: "NumberOfBoards", Value: int64(h.NumberOfBoards)}
	}
	if int(h.ImgHdrSize) != len(h.SpecialHeader) {
		return ErrBadField{Field: "ImgHdrSize", Value: int64(h.ImgHdrSize)}
	}

	buf, err := b.AppendBytes(HeaderLength(len(h.Boards), len(h.SpecialHeader)))
	if err != nil {
		return err
	}
	w := &fieldWriter{data: buf}

	w.string(h.Ident, identSize)
	w.string(h.FormatVersion, formatVersionSize)
	w.string(h.CreatorName, creatorNameSize)
	w.string(h.CreatorVersion, creatorVersionSize)
	w.string(h.FileTime, fileTimeSize)
	copy(buf[w.offset:], "\r\n")
	w.offset += crlfSize
	w.string(h.Comment, commentSize)

	w.int32(h.Curves)
	w.int32(h.BitsPerRecord)
	w.int32(h.RoutingChannels)
	w.int32(h.NumberOfBoards)
	w.int32(h.ActiveCurve)
	w.int32(h.MeasurementMode)
	w.int32(h.SubMode)
	w.int32(h.RangeNo)
	w.int32(h.Offset)
	w.int32(h.Tacq)
	w.int32(h.StopAt)
	w.int32(h.StopOnOvfl)
	w.int32(h.Restart)
	w.skip(5*4 + 8*8 + 3*12)
	w.int32(h.RepeatMode)
	w.int32(h.RepeatsPerCurve)
	w.int32(h.RepeatTime)
	w.int32(h.RepeatWaitTime)
	w.string(h.ScriptName, scriptNameSize)

	for _, board := range h.Boards {
		w.string(board.HardwareIdent, hardwareIdentSize)
		w.string(board.HardwareVersion, hardwareVerSize)
		w.int32(board.HardwareSerial)
		w.int32(board.SyncDivider)
		w.int32(board.CFDZeroCross0)
		w.int32(board.CFDLevel0)
		w.int32(board.CFDZeroCross1)
		w.int32(board.CFDLevel1)
		w.float32(board.Resolution)
		w.int32(board.RouterModelCode)
		w.int32(board.RouterEnabled)
		w.skip(4 * 6 * 4)
	}

	w.int32(h.ExtDevices)
	w.skip(2 * 4)
	w.int32(h.CntRate0)
	w.int32(h.CntRate1)
	w.int32(h.StopAfter)
	w.int32(h.StopReason)
	w.int32(h.NumRecords)
	w.int32(h.ImgHdrSize)
	for _, word := range h.SpecialHeader {
		w.int32(int32(word))
	}
	return nil
}

func decodeHeaderLayer(data []byte, p gopacket.PacketBuilder) error {
	h := &HeaderLayer{}
	err := h.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(h)
	return p.NextDecoder(h.NextLayerType())
}
