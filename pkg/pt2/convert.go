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
	"errors"
	"fmt"
	"io"
	"time"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-tttr/pkg/log"
)

const (
	DefaultResolution = 1e-7
)

type Options struct {
	// Resolution is the output tick in seconds
	Resolution float64
	// AccumulateOverflow adds T2WrapAround ticks to every record following an
	// overflow record. Without it overflow records are dropped and time tags
	// restart from zero after each counter wrap.
	AccumulateOverflow bool
	// Validate checks the header signature before converting
	Validate bool
}

func DefaultOptions() Options {
	return Options{
		Resolution: DefaultResolution,
		Validate:   true,
	}
}

// Summary describes a finished (or aborted) conversion
type Summary struct {
	Name               string    `json:"name,omitempty"`
	Header             *Header   `json:"header,omitempty"`
	Resolution         float64   `json:"resolution"`
	AccumulateOverflow bool      `json:"accumulateOverflow"`
	Records            int64     `json:"records"`
	Timestamps         int64     `json:"timestamps"`
	Overflows          int64     `json:"overflows"`
	Markers            int64     `json:"markers"`
	Bytes              int64     `json:"bytes"`
	Started            time.Time `json:"started"`
	Finished           time.Time `json:"finished"`
}

func (s *Summary) String() string {
	result, err := yaml.Marshal(s)
	if err != nil {
		log.Error("Error occured while marshaling conversion summary, %s", err)
		return ""
	}
	return fmt.Sprintf("---\n%s", string(result))
}

// Session converts one PT2 stream. Input and output belong to the session
// until Convert returns, a session can be used once.
type Session struct {
	in   *bufio.Reader
	out  *TimestampWriter
	opts Options
	used bool
}

func NewSession(in io.Reader, out io.Writer, opts Options) *Session {
	return &Session{
		in:   bufio.NewReader(in),
		out:  NewTimestampWriter(out),
		opts: opts,
	}
}

// Convert reads the header, then exactly the declared number of records and
// writes one timestamp per ordinary record. Output written before an error is kept.
func (s *Session) Convert() (*Summary, error) {
	if s.used {
		return nil, ErrSessionDone{}
	}
	s.used = true

	summary := &Summary{
		Resolution:         s.opts.Resolution,
		AccumulateOverflow: s.opts.AccumulateOverflow,
		Started:            time.Now(),
	}
	err := s.convert(summary)
	if flushErr := s.out.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("writing timestamps: %w", flushErr)
	}
	summary.Bytes = s.out.Written()
	summary.Finished = time.Now()
	if err != nil {
		log.Debug("Conversion aborted after %d records: %s", summary.Records, err)
		return summary, err
	}
	log.Info("Converted %d records: timestamps: %d overflows: %d markers: %d",
		summary.Records, summary.Timestamps, summary.Overflows, summary.Markers)
	return summary, nil
}

func (s *Session) convert(summary *Summary) error {
	if err := checkUnit("target resolution", s.opts.Resolution); err != nil {
		return err
	}
	header, err := ReadHeader(s.in, s.opts.Validate)
	if err != nil {
		return err
	}
	summary.Header = header

	scale, err := NewScale(header.NativeTimeUnit, s.opts.Resolution)
	if err != nil {
		return err
	}
	log.Debug("Converting %d records: scale: %s accumulate overflow: %t",
		header.RecordCount(), scale.Ratio(), s.opts.AccumulateOverflow)

	decoder := NewDecoder(s.in, header.Length)
	var overflow uint64
	for i := int64(0); i < header.RecordCount(); i++ {
		record, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			return ErrTruncatedRecordStream{
				Declared: header.RecordCount(),
				Read:     i,
				Offset:   decoder.Offset(),
			}
		}
		if err != nil {
			return err
		}
		summary.Records++

		if record.Special {
			if record.Overflow() {
				summary.Overflows++
				if s.opts.AccumulateOverflow {
					overflow += T2WrapAround
				}
			} else {
				summary.Markers++
			}
			continue
		}

		t := overflow + uint64(record.Time)
		ts, ok := scale.Apply(t)
		if !ok {
			return ErrTimestampOverflow{Time: t, Offset: decoder.Offset() - RecordSize}
		}
		if err := s.out.WriteTimestamp(ts); err != nil {
			return fmt.Errorf("writing timestamps: %w", err)
		}
		summary.Timestamps++
	}
	return nil
}

// Convert converts a PT2 stream with default options and the given resolution
func Convert(in io.Reader, out io.Writer, targetResolution float64) (*Summary, error) {
	opts := DefaultOptions()
	opts.Resolution = targetResolution
	return NewSession(in, out, opts).Convert()
}
