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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err    error
		kind   string
		format bool
	}{
		{err: ErrTruncatedHeader{Offset: 3, Want: 536}, kind: "TruncatedHeader", format: true},
		{err: ErrInvalidFormat{What: "ident"}, kind: "InvalidFormat", format: true},
		{err: fmt.Errorf("input: %w", ErrTruncatedRecord{Offset: 728, Length: 3}), kind: "TruncatedRecord", format: true},
		{err: ErrTruncatedRecordStream{Declared: 10, Read: 5}, kind: "TruncatedRecordStream", format: true},
		{err: ErrTimestampOverflow{}, kind: "TimestampOverflow", format: true},
		{err: ErrInvalidUnit{What: "target resolution"}, kind: "InvalidUnit", format: false},
		{err: io.ErrClosedPipe, kind: "", format: false},
		{err: errors.New("other"), kind: "", format: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, Kind(tt.err), tt.err.Error())
		assert.Equal(t, tt.format, IsFormatError(tt.err), tt.err.Error())
	}
}

func TestErrorMessagesCarryOffsets(t *testing.T) {
	assert.Equal(t, "truncated record at byte offset 728: 3 of 4 bytes",
		ErrTruncatedRecord{Offset: 728, Length: 3}.Error())
	assert.Equal(t, "truncated header at byte offset 12: header needs 536 bytes",
		ErrTruncatedHeader{Offset: 12, Want: 536}.Error())
	assert.Equal(t, "truncated record stream at byte offset 748: header declares 10 records, stream holds 5",
		ErrTruncatedRecordStream{Declared: 10, Read: 5, Offset: 748}.Error())
}
