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
	"math"
	"math/big"
	"math/bits"
	"strconv"
)

// Scale converts time tags from the native unit to the target resolution.
// Both units are taken at their shortest decimal value (4e-12 is exactly
// 4/10^12) so that floor(t * unit / resolution) is exact.
type Scale struct {
	ratio *big.Rat
	// num and den are set when the reduced ratio fits into 64 bits
	num, den uint64
	small    bool
}

func checkUnit(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidUnit{What: what, Value: v}
	}
	return nil
}

func decimalRat(v float64) *big.Rat {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'g', -1, 64))
	if !ok {
		return new(big.Rat).SetFloat64(v)
	}
	return r
}

func NewScale(nativeUnit, resolution float64) (*Scale, error) {
	if err := checkUnit("native time unit", nativeUnit); err != nil {
		return nil, err
	}
	if err := checkUnit("target resolution", resolution); err != nil {
		return nil, err
	}
	ratio := new(big.Rat).Quo(decimalRat(nativeUnit), decimalRat(resolution))
	s := &Scale{ratio: ratio}
	if ratio.Num().IsUint64() && ratio.Denom().IsUint64() {
		s.num = ratio.Num().Uint64()
		s.den = ratio.Denom().Uint64()
		s.small = true
	}
	return s, nil
}

// Apply returns floor(t * ratio). ok is false if the result overflows uint64.
func (s *Scale) Apply(t uint64) (uint64, bool) {
	if s.small {
		hi, lo := bits.Mul64(t, s.num)
		if hi >= s.den {
			return 0, false
		}
		q, _ := bits.Div64(hi, lo, s.den)
		return q, true
	}
	q := new(big.Int).SetUint64(t)
	q.Mul(q, s.ratio.Num())
	q.Quo(q, s.ratio.Denom())
	if !q.IsUint64() {
		return 0, false
	}
	return q.Uint64(), true
}

// Ratio returns output ticks per native tick, e.g. "1/25000"
func (s *Scale) Ratio() string {
	return s.ratio.String()
}

func (s *Scale) Float64() float64 {
	f, _ := s.ratio.Float64()
	return f
}
