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
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-tttr/pkg/pt2/pt2test"
)

func timestamps(t *testing.T, data []byte) []uint64 {
	t.Helper()
	require.Zero(t, len(data)%TimestampSize, "output is not a whole number of timestamps")
	result := make([]uint64, 0, len(data)/TimestampSize)
	for i := 0; i < len(data); i += TimestampSize {
		result = append(result, binary.LittleEndian.Uint64(data[i:i+TimestampSize]))
	}
	return result
}

// mixed has photons on two channels, an overflow and a marker
var mixed = []uint32{
	pt2test.Photon(5),
	pt2test.Overflow,
	pt2test.Photon(25000000),
	pt2test.Marker(1),
	pt2test.Word(1, 0x0FFFFFFF),
	pt2test.Photon(2500),
}

func TestConvertSkipsSpecialRecords(t *testing.T) {
	out := &bytes.Buffer{}
	summary, err := Convert(bytes.NewReader(pt2test.File(mixed...)), out, 1e-7)
	require.NoError(t, err)

	assert.Equal(t, []uint64{0, 1000, 10737, 0}, timestamps(t, out.Bytes()))
	assert.Equal(t, int64(6), summary.Records)
	assert.Equal(t, int64(4), summary.Timestamps)
	assert.Equal(t, int64(1), summary.Overflows)
	assert.Equal(t, int64(1), summary.Markers)
	assert.Equal(t, int64(32), summary.Bytes)
	assert.Equal(t, 1e-7, summary.Resolution)
	require.NotNil(t, summary.Header)
	assert.Equal(t, int64(6), summary.Header.RecordCount())
	assert.False(t, summary.Finished.Before(summary.Started))
}

func TestConvertOutputCountMatchesOrdinaryRecords(t *testing.T) {
	var ws []uint32
	ordinary := 0
	for i := uint32(0); i < 1000; i++ {
		switch {
		case i%97 == 0:
			ws = append(ws, pt2test.Overflow)
		case i%31 == 0:
			ws = append(ws, pt2test.Marker(uint8(i)))
		default:
			ws = append(ws, pt2test.Word(uint8(i%4), i*1000))
			ordinary++
		}
	}
	out := &bytes.Buffer{}
	_, err := Convert(bytes.NewReader(pt2test.File(ws...)), out, 4e-12)
	require.NoError(t, err)

	got := timestamps(t, out.Bytes())
	require.Len(t, got, ordinary)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i], "timestamps keep input order")
	}
}

func TestConvertSingleWords(t *testing.T) {
	out := &bytes.Buffer{}
	_, err := Convert(bytes.NewReader(pt2test.File(0xF0000000)), out, 1e-7)
	require.NoError(t, err)
	assert.Empty(t, out.Bytes())

	out.Reset()
	_, err = Convert(bytes.NewReader(pt2test.File(0x00000005)), out, 4e-12)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, timestamps(t, out.Bytes()))
}

func TestConvertAccumulateOverflow(t *testing.T) {
	tests := []struct {
		name       string
		accumulate bool
		want       []uint64
	}{
		{
			name:       "drop overflows",
			accumulate: false,
			want:       []uint64{5, 25000000, 0x0FFFFFFF, 2500},
		},
		{
			name:       "accumulate overflows",
			accumulate: true,
			want:       []uint64{5, T2WrapAround + 25000000, T2WrapAround + 0x0FFFFFFF, T2WrapAround + 2500},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			opts := DefaultOptions()
			opts.Resolution = T2TimeUnit
			opts.AccumulateOverflow = tt.accumulate
			summary, err := NewSession(bytes.NewReader(pt2test.File(mixed...)), out, opts).Convert()
			require.NoError(t, err)
			assert.Equal(t, tt.want, timestamps(t, out.Bytes()))
			assert.Equal(t, tt.accumulate, summary.AccumulateOverflow)
		})
	}
}

func TestConvertMonotonicAcrossOverflows(t *testing.T) {
	ws := []uint32{
		pt2test.Photon(T2WrapAround - 1),
		pt2test.Overflow,
		pt2test.Photon(1),
		pt2test.Overflow,
		pt2test.Overflow,
		pt2test.Photon(0),
	}
	out := &bytes.Buffer{}
	opts := DefaultOptions()
	opts.Resolution = 1e-9
	opts.AccumulateOverflow = true
	_, err := NewSession(bytes.NewReader(pt2test.File(ws...)), out, opts).Convert()
	require.NoError(t, err)

	// 4 ps ticks in ns: floor(t * 4 / 1000)
	assert.Equal(t, []uint64{842792, 842792, 2528378}, timestamps(t, out.Bytes()))
}

func TestConvertHeaderPlusFragment(t *testing.T) {
	data := append(pt2test.Build(pt2test.Header(1)), 0x01, 0x02, 0x03)
	out := &bytes.Buffer{}

	_, err := Convert(bytes.NewReader(data), out, 1e-7)
	var truncated ErrTruncatedRecord
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, int64(728), truncated.Offset)
	assert.Equal(t, 3, truncated.Length)
	assert.Empty(t, out.Bytes())
}

func TestConvertTruncatedRecordStream(t *testing.T) {
	ws := []uint32{1, 2, 3, 4, 5}
	data := pt2test.Build(pt2test.Header(10), ws...)
	out := &bytes.Buffer{}

	summary, err := Convert(bytes.NewReader(data), out, 4e-12)
	var truncated ErrTruncatedRecordStream
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, int64(10), truncated.Declared)
	assert.Equal(t, int64(5), truncated.Read)
	assert.Equal(t, int64(728+20), truncated.Offset)
	assert.Contains(t, err.Error(), "byte offset 748")

	// output already written is kept
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, timestamps(t, out.Bytes()))
	assert.Equal(t, int64(5), summary.Records)
}

func TestConvertStopsAtDeclaredCount(t *testing.T) {
	data := pt2test.Build(pt2test.Header(2), 10, 20, 30)
	data = append(data, 0xff, 0xff)
	out := &bytes.Buffer{}

	summary, err := Convert(bytes.NewReader(data), out, 4e-12)
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 20}, timestamps(t, out.Bytes()))
	assert.Equal(t, int64(2), summary.Records)
}

func TestConvertTruncatedHeader(t *testing.T) {
	data := pt2test.File(1, 2)
	out := &bytes.Buffer{}

	summary, err := Convert(bytes.NewReader(data[:400]), out, 1e-7)
	var truncated ErrTruncatedHeader
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, int64(400), truncated.Offset)
	assert.Nil(t, summary.Header)
	assert.Empty(t, out.Bytes())
}

func TestConvertInvalidResolution(t *testing.T) {
	_, err := Convert(bytes.NewReader(pt2test.File(1)), &bytes.Buffer{}, 0)
	var invalid ErrInvalidUnit
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "target resolution", invalid.What)
}

func TestConvertTimestampOverflow(t *testing.T) {
	_, err := Convert(bytes.NewReader(pt2test.File(1, 0x0FFFFFFF)), &bytes.Buffer{}, 1e-30)
	var overflow ErrTimestampOverflow
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, int64(728+4), overflow.Offset)
	assert.Equal(t, uint64(0x0FFFFFFF), overflow.Time)
}

func TestConvertIdempotent(t *testing.T) {
	data := pt2test.File(mixed...)
	first := &bytes.Buffer{}
	second := &bytes.Buffer{}

	_, err := Convert(bytes.NewReader(data), first, 1e-9)
	require.NoError(t, err)
	_, err = Convert(bytes.NewReader(data), second, 1e-9)
	require.NoError(t, err)
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestSessionSingleUse(t *testing.T) {
	s := NewSession(bytes.NewReader(pt2test.File(1)), &bytes.Buffer{}, DefaultOptions())
	_, err := s.Convert()
	require.NoError(t, err)

	_, err = s.Convert()
	assert.ErrorIs(t, err, ErrSessionDone{})
}

func TestSummaryString(t *testing.T) {
	summary, err := Convert(bytes.NewReader(pt2test.File(mixed...)), &bytes.Buffer{}, 1e-7)
	require.NoError(t, err)
	summary.Name = "sample.pt2"

	s := summary.String()
	assert.Contains(t, s, "name: sample.pt2")
	assert.Contains(t, s, "timestamps: 4")
	assert.Contains(t, s, "overflows: 1")
}

func TestConvertGolden(t *testing.T) {
	g := goldie.New(t)

	out := &bytes.Buffer{}
	_, err := Convert(bytes.NewReader(pt2test.File(mixed...)), out, 1e-7)
	require.NoError(t, err)
	g.Assert(t, "convert_default", out.Bytes())

	out.Reset()
	opts := DefaultOptions()
	opts.Resolution = T2TimeUnit
	opts.AccumulateOverflow = true
	_, err = NewSession(bytes.NewReader(pt2test.File(mixed...)), out, opts).Convert()
	require.NoError(t, err)
	g.Assert(t, "convert_accumulate", out.Bytes())
}
