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

// Package pt2test builds PT2 byte streams for tests
package pt2test

import (
	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-tttr/pkg/layers"
)

const (
	Overflow uint32 = 0xF0000000
)

// Header returns a PicoHarp 300 T2 header declaring numRecords records
func Header(numRecords int32) *layers.HeaderLayer {
	return &layers.HeaderLayer{
		TextHeader: layers.TextHeader{
			Ident:          "PicoHarp 300",
			FormatVersion:  "2.0",
			CreatorName:    "PicoHarp Software",
			CreatorVersion: "2.3.0.0",
			FileTime:       "18/10/10 12:09:33",
			Comment:        "fixture",
		},
		BinaryHeader: layers.BinaryHeader{
			BitsPerRecord:   32,
			RoutingChannels: 1,
			MeasurementMode: 2,
			Tacq:            1000,
		},
		Boards: []layers.BoardHeader{
			{
				HardwareIdent:   "PicoHarp 300",
				HardwareVersion: "2.0",
				HardwareSerial:  1020304,
				SyncDivider:     1,
				Resolution:      0.004,
			},
		},
		TTTRHeader: layers.TTTRHeader{
			NumRecords: numRecords,
		},
	}
}

// Word packs a channel and a time tag into a record word
func Word(channel uint8, time uint32) uint32 {
	r := &layers.RecordLayer{Channel: channel, Time: time}
	return r.Word()
}

// Photon returns a channel 0 record word
func Photon(time uint32) uint32 {
	return Word(0, time)
}

// Marker returns a special record word carrying marker bits
func Marker(markers uint8) uint32 {
	return Word(layers.SpecialChannel, uint32(markers&layers.MarkerMask))
}

// Build serializes the header followed by the record words
func Build(h *layers.HeaderLayer, words ...uint32) []byte {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := h.SerializeTo(buf, opts); err != nil {
		panic(err)
	}
	for _, word := range words {
		r := &layers.RecordLayer{
			Channel: uint8(word >> layers.ChannelShift),
			Time:    word & layers.TimeMask,
		}
		if err := r.SerializeTo(buf, opts); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

// File is a header declaring exactly len(words) records followed by the words
func File(words ...uint32) []byte {
	return Build(Header(int32(len(words))), words...)
}
