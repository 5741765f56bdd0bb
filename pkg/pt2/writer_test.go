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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-tttr/pkg/pt2/pt2test"
)

var errDiskFull = errors.New("disk full")

// limitedWriter takes at most limit bytes and fails after that
type limitedWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	room := w.limit - w.buf.Len()
	if len(p) <= room {
		return w.buf.Write(p)
	}
	w.buf.Write(p[:room])
	return room, errDiskFull
}

func TestTimestampWriterWritten(t *testing.T) {
	out := &bytes.Buffer{}
	w := NewTimestampWriter(out)
	require.NoError(t, w.WriteTimestamp(1))
	require.NoError(t, w.WriteTimestamp(2))
	assert.Equal(t, int64(2), w.Count())
	assert.Equal(t, int64(0), w.Written())

	require.NoError(t, w.Flush())
	assert.Equal(t, int64(16), w.Written())
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0}, out.Bytes())
}

func TestConvertBytesCountsFlushedOutputOnly(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		bytes int64
	}{
		{name: "nothing written", limit: 0, bytes: 0},
		{name: "one timestamp written", limit: 8, bytes: 8},
		{name: "half a timestamp written", limit: 12, bytes: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &limitedWriter{limit: tt.limit}
			in := bytes.NewReader(pt2test.File(pt2test.Photon(25000000), pt2test.Photon(50000000)))

			summary, err := NewSession(in, out, DefaultOptions()).Convert()
			require.ErrorIs(t, err, errDiskFull)
			assert.Equal(t, int64(2), summary.Timestamps)
			assert.Equal(t, tt.bytes, summary.Bytes)
			assert.Equal(t, int(tt.bytes), out.buf.Len())
		})
	}
}

func TestTimesFileName(t *testing.T) {
	assert.Equal(t, "a.pt2.times", TimesFileName("a.pt2", ""))
	assert.Equal(t, "a.pt2.ts", TimesFileName("a.pt2", ".ts"))
}
