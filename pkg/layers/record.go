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

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// RecordLayerNum identifies the layer
	RecordLayerNum = 2101
)

// T2 record is one 32 bit little endian word
// bits 31..28 channel, 15 is reserved for special records
// bits 27..0  time tag, for special records the low 4 bits are marker bits
const (
	RecordSize     = 4
	TimeMask       = 0x0FFFFFFF
	ChannelShift   = 28
	ChannelMask    = 0xF
	SpecialChannel = 0xF
	MarkerMask     = 0xF
)

// RecordLayer is a single T2 event record
type RecordLayer struct {
	layers.BaseLayer
	Channel uint8
	Time    uint32
}

// RecordLayerType is registered in init, its decoder chains to itself
var RecordLayerType gopacket.LayerType

func init() {
	RecordLayerType = gopacket.RegisterLayerType(RecordLayerNum,
		gopacket.LayerTypeMetadata{Name: "T2RecordLayerType", Decoder: gopacket.DecodeFunc(decodeRecordLayer)})
}

// LayerType returns the type of the T2 record layer in the layer catalog
func (r *RecordLayer) LayerType() gopacket.LayerType {
	return RecordLayerType
}

func (r *RecordLayer) CanDecode() gopacket.LayerClass {
	return RecordLayerType
}

// NextLayerType returns the record layer as long as there are bytes left
func (r *RecordLayer) NextLayerType() gopacket.LayerType {
	if len(r.Payload) == 0 {
		return gopacket.LayerTypeZero
	}
	return RecordLayerType
}

// Special reports whether the record is an overflow or marker record
func (r *RecordLayer) Special() bool {
	return r.Channel == SpecialChannel
}

// Word packs channel and time back into the record word
func (r *RecordLayer) Word() uint32 {
	return uint32(r.Channel&ChannelMask)<<ChannelShift | r.Time&TimeMask
}

func (r *RecordLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < RecordSize {
		df.SetTruncated()
		return ErrTooShort{What: "T2 record", Want: RecordSize, Got: len(data)}
	}
	word := binary.LittleEndian.Uint32(data[:RecordSize])
	r.Channel = uint8((word >> ChannelShift) & ChannelMask)
	r.Time = word & TimeMask
	r.BaseLayer = layers.BaseLayer{
		Contents: data[:RecordSize],
		Payload:  data[RecordSize:],
	}
	return nil
}

func (r *RecordLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	buf, err := b.AppendBytes(RecordSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf, r.Word())
	return nil
}

// decodeRecordLayer decodes a record and chains to the next one,
// so a block of records becomes a packet with one layer per record
func decodeRecordLayer(data []byte, p gopacket.PacketBuilder) error {
	r := &RecordLayer{}
	err := r.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(r)
	return p.NextDecoder(r.NextLayerType())
}
