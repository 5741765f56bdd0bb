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
	"encoding/binary"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedback struct {
	truncated bool
}

func (f *feedback) SetTruncated() {
	f.truncated = true
}

func sampleHeader() *HeaderLayer {
	return &HeaderLayer{
		TextHeader: TextHeader{
			Ident:          "PicoHarp 300",
			FormatVersion:  "2.0",
			CreatorName:    "PicoHarp Software",
			CreatorVersion: "2.3.0.0",
			FileTime:       "18/10/10 12:09:33",
			Comment:        "dye in buffer",
		},
		BinaryHeader: BinaryHeader{
			Curves:          0,
			BitsPerRecord:   32,
			RoutingChannels: 1,
			MeasurementMode: 2,
			Tacq:            360000,
			ScriptName:      "t2.scr",
		},
		Boards: []BoardHeader{
			{
				HardwareIdent:   "PicoHarp 300",
				HardwareVersion: "2.0",
				HardwareSerial:  1003456,
				SyncDivider:     1,
				Resolution:      0.004,
			},
		},
		TTTRHeader: TTTRHeader{
			CntRate0:   81000,
			CntRate1:   79500,
			NumRecords: 3,
		},
		SpecialHeader: []uint32{0xdeadbeef},
	}
}

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	for _, l := range ls {
		require.NoError(t, l.SerializeTo(buf, opts))
	}
	return buf.Bytes()
}

func TestHeaderLayout(t *testing.T) {
	data := serialize(t, sampleHeader())

	require.Len(t, data, HeaderLength(1, 1))
	assert.Equal(t, 732, len(data))
	assert.Equal(t, "PicoHarp 300", string(data[:12]))
	assert.Equal(t, byte(0), data[12])
	assert.Equal(t, "\r\n", string(data[70:72]))
	assert.Equal(t, int32(1), BoardCount(data[:PrefixSize]))
	assert.Equal(t, uint32(32), binary.LittleEndian.Uint32(data[332:336]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[348:352]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[720:724]))
	assert.Equal(t, int32(1), SpecialHeaderWords(data[692:728]))
	assert.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(data[728:732]))
}

func TestHeaderDecode(t *testing.T) {
	records := []byte{0x05, 0x00, 0x00, 0x00}
	data := append(serialize(t, sampleHeader()), records...)

	h := &HeaderLayer{}
	require.NoError(t, h.DecodeFromBytes(data, gopacket.NilDecodeFeedback))

	expected := sampleHeader()
	expected.NumberOfBoards = 1
	expected.ImgHdrSize = 1
	assert.Equal(t, expected.TextHeader, h.TextHeader)
	assert.Equal(t, expected.BinaryHeader, h.BinaryHeader)
	assert.Equal(t, expected.Boards, h.Boards)
	assert.Equal(t, expected.TTTRHeader, h.TTTRHeader)
	assert.Equal(t, expected.SpecialHeader, h.SpecialHeader)
	assert.Len(t, h.LayerContents(), 732)
	assert.Equal(t, records, h.LayerPayload())
}

func TestHeaderDecodeTruncated(t *testing.T) {
	data := serialize(t, sampleHeader())

	for _, cut := range []int{0, PrefixSize - 1, PrefixSize + 10, len(data) - 1} {
		df := &feedback{}
		err := (&HeaderLayer{}).DecodeFromBytes(data[:cut], df)
		var short ErrTooShort
		require.ErrorAs(t, err, &short, "cut at %d", cut)
		assert.Equal(t, cut, short.Got)
		assert.True(t, df.truncated)
	}
}

func TestHeaderDecodeNegativeBoards(t *testing.T) {
	data := serialize(t, sampleHeader())
	binary.LittleEndian.PutUint32(data[NumberOfBoardsOffset:], 0xffffffff)

	err := (&HeaderLayer{}).DecodeFromBytes(data, gopacket.NilDecodeFeedback)
	var bad ErrBadField
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "NumberOfBoards", bad.Field)
	assert.Equal(t, int64(-1), bad.Value)
}

func TestHeaderSerializeMismatchedCounts(t *testing.T) {
	h := sampleHeader()
	buf := gopacket.NewSerializeBuffer()
	err := h.SerializeTo(buf, gopacket.SerializeOptions{})
	var bad ErrBadField
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "NumberOfBoards", bad.Field)
}

func TestRecordDecode(t *testing.T) {
	tests := []struct {
		name    string
		word    uint32
		channel uint8
		time    uint32
		special bool
	}{
		{name: "overflow", word: 0xF0000000, channel: 0xF, time: 0, special: true},
		{name: "photon", word: 0x00000005, channel: 0, time: 5, special: false},
		{name: "marker", word: 0xF0001232, channel: 0xF, time: 0x1232, special: true},
		{name: "channel one", word: 0x1FFFFFFF, channel: 1, time: 0x0FFFFFFF, special: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, RecordSize)
			binary.LittleEndian.PutUint32(data, tt.word)

			r := &RecordLayer{}
			require.NoError(t, r.DecodeFromBytes(data, gopacket.NilDecodeFeedback))
			assert.Equal(t, tt.channel, r.Channel)
			assert.Equal(t, tt.time, r.Time)
			assert.Equal(t, tt.special, r.Special())
			assert.Equal(t, tt.word, r.Word())
			assert.Equal(t, data, serialize(t, r))
		})
	}
}

func TestRecordDecodeShort(t *testing.T) {
	df := &feedback{}
	err := (&RecordLayer{}).DecodeFromBytes([]byte{1, 2, 3}, df)
	var short ErrTooShort
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 3, short.Got)
	assert.True(t, df.truncated)
}

func TestRecordBlockPacket(t *testing.T) {
	data := serialize(t,
		&RecordLayer{Channel: 0, Time: 100},
		&RecordLayer{Channel: 0xF, Time: 0},
		&RecordLayer{Channel: 1, Time: 200},
	)

	packet := gopacket.NewPacket(data, RecordLayerType, gopacket.Default)
	require.Nil(t, packet.ErrorLayer())
	ls := packet.Layers()
	require.Len(t, ls, 3)
	assert.Equal(t, uint32(100), ls[0].(*RecordLayer).Time)
	assert.True(t, ls[1].(*RecordLayer).Special())
	assert.Equal(t, uint8(1), ls[2].(*RecordLayer).Channel)

	packet = gopacket.NewPacket(append(data, 0x01), RecordLayerType, gopacket.Default)
	assert.NotNil(t, packet.ErrorLayer())
}

func TestHeaderPacketChainsRecords(t *testing.T) {
	data := serialize(t, sampleHeader(), &RecordLayer{Channel: 0, Time: 7})

	packet := gopacket.NewPacket(data, HeaderLayerType, gopacket.Default)
	require.Nil(t, packet.ErrorLayer())
	h, ok := packet.Layer(HeaderLayerType).(*HeaderLayer)
	require.True(t, ok)
	assert.Equal(t, "PicoHarp 300", h.Ident)
	r, ok := packet.Layer(RecordLayerType).(*RecordLayer)
	require.True(t, ok)
	assert.Equal(t, uint32(7), r.Time)
}

func TestLayerTypesRegistered(t *testing.T) {
	assert.Equal(t, "T2RecordLayerType", RecordLayerType.String())
	assert.Equal(t, "PT2HeaderLayerType", HeaderLayerType.String())
	assert.Equal(t, RecordLayerType, (&HeaderLayer{}).NextLayerType())
	assert.Equal(t, gopacket.LayerTypeZero, (&RecordLayer{}).NextLayerType())
	assert.Equal(t, RecordLayerType, (&RecordLayer{BaseLayer: layers.BaseLayer{Payload: []byte{0}}}).NextLayerType())
}
