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
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"jinr.ru/greenlab/go-tttr/pkg/log"
)

const (
	TimestampSize = 8
	// DefaultTimesSuffix is appended to the input file name to get the output file name
	DefaultTimesSuffix = ".times"
)

// TimestampWriter writes timestamps as raw 64 bit little endian integers
type TimestampWriter struct {
	w     *bufio.Writer
	buf   [TimestampSize]byte
	count int64
	// accepted counts bytes taken by the buffer, including parts of failed writes
	accepted int64
}

func NewTimestampWriter(w io.Writer) *TimestampWriter {
	return &TimestampWriter{
		w: bufio.NewWriter(w),
	}
}

func (w *TimestampWriter) WriteTimestamp(ts uint64) error {
	binary.LittleEndian.PutUint64(w.buf[:], ts)
	n, err := w.w.Write(w.buf[:])
	w.accepted += int64(n)
	if err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of timestamps written so far
func (w *TimestampWriter) Count() int64 {
	return w.count
}

// Written returns the number of bytes which reached the underlying writer
func (w *TimestampWriter) Written() int64 {
	return w.accepted - int64(w.w.Buffered())
}

func (w *TimestampWriter) Flush() error {
	return w.w.Flush()
}

// TimesFileName returns the output file name for an input file
func TimesFileName(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultTimesSuffix
	}
	return input + suffix
}

// TimesFile is an output file which is synced to disk on Close
type TimesFile struct {
	file *os.File
}

func CreateTimesFile(filename string) (*TimesFile, error) {
	file, err := os.Create(filename)
	if err != nil {
		log.Error("Error while creating file: %s", filename)
		return nil, err
	}
	return &TimesFile{
		file: file,
	}, nil
}

func (f *TimesFile) Name() string {
	return f.file.Name()
}

func (f *TimesFile) Write(buf []byte) (int, error) {
	return f.file.Write(buf)
}

func (f *TimesFile) Close() error {
	if err := f.file.Sync(); err != nil {
		f.file.Close()
		return err
	}
	return f.file.Close()
}
