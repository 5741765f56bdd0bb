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
)

// ErrTruncatedHeader returned when the stream ends inside the file header
type ErrTruncatedHeader struct {
	Offset int64
	Want   int64
}

func (e ErrTruncatedHeader) Error() string {
	return fmt.Sprintf("truncated header at byte offset %d: header needs %d bytes", e.Offset, e.Want)
}

// ErrInvalidFormat returned when a header field fails a sanity check
type ErrInvalidFormat struct {
	What   string
	Offset int64
}

func (e ErrInvalidFormat) Error() string {
	return fmt.Sprintf("invalid format at byte offset %d: %s", e.Offset, e.What)
}

// ErrTruncatedRecord returned when the stream ends with a fragment shorter than a record
type ErrTruncatedRecord struct {
	Offset int64
	Length int
}

func (e ErrTruncatedRecord) Error() string {
	return fmt.Sprintf("truncated record at byte offset %d: %d of %d bytes", e.Offset, e.Length, RecordSize)
}

// ErrTruncatedRecordStream returned when the stream holds fewer records than the header declares
type ErrTruncatedRecordStream struct {
	Declared int64
	Read     int64
	Offset   int64
}

func (e ErrTruncatedRecordStream) Error() string {
	return fmt.Sprintf("truncated record stream at byte offset %d: header declares %d records, stream holds %d",
		e.Offset, e.Declared, e.Read)
}

// ErrInvalidUnit returned when a time unit is not a finite positive number
type ErrInvalidUnit struct {
	What  string
	Value float64
}

func (e ErrInvalidUnit) Error() string {
	return fmt.Sprintf("invalid %s: %g, must be a finite positive number of seconds", e.What, e.Value)
}

// ErrTimestampOverflow returned when a rescaled timestamp does not fit into 64 bits
type ErrTimestampOverflow struct {
	Time   uint64
	Offset int64
}

func (e ErrTimestampOverflow) Error() string {
	return fmt.Sprintf("timestamp overflow at byte offset %d: time tag %d does not fit into 64 bits after rescaling",
		e.Offset, e.Time)
}

// ErrSessionDone returned when Convert is called on a session more than once
type ErrSessionDone struct{}

func (e ErrSessionDone) Error() string {
	return "conversion session already used, record streams can not be restarted"
}

// Kind names the class of a conversion error, "" for errors of other packages
func Kind(err error) string {
	var (
		truncatedHeader ErrTruncatedHeader
		invalidFormat   ErrInvalidFormat
		truncatedRecord ErrTruncatedRecord
		truncatedStream ErrTruncatedRecordStream
		invalidUnit     ErrInvalidUnit
		overflow        ErrTimestampOverflow
	)
	switch {
	case errors.As(err, &truncatedHeader):
		return "TruncatedHeader"
	case errors.As(err, &invalidFormat):
		return "InvalidFormat"
	case errors.As(err, &truncatedRecord):
		return "TruncatedRecord"
	case errors.As(err, &truncatedStream):
		return "TruncatedRecordStream"
	case errors.As(err, &invalidUnit):
		return "InvalidUnit"
	case errors.As(err, &overflow):
		return "TimestampOverflow"
	}
	return ""
}

// IsFormatError reports whether err is caused by the content of the input stream
func IsFormatError(err error) bool {
	switch Kind(err) {
	case "TruncatedHeader", "InvalidFormat", "TruncatedRecord", "TruncatedRecordStream", "TimestampOverflow":
		return true
	}
	return false
}
