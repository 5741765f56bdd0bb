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

package srv

import (
	"errors"
	"fmt"
	"net/http"

	"jinr.ru/greenlab/go-tttr/pkg/catalog"
	"jinr.ru/greenlab/go-tttr/pkg/pt2"
)

// ApiError is the body of every failed API response
type ApiError struct {
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error"`
}

// ErrBadParameter returned when a query parameter can not be parsed
type ErrBadParameter struct {
	Name  string
	Value string
}

func (e ErrBadParameter) Error() string {
	return fmt.Sprintf("Bad value of parameter %s: %q", e.Name, e.Value)
}

// ErrNoCatalog returned when conversions are requested from a server without catalog
type ErrNoCatalog struct{}

func (e ErrNoCatalog) Error() string {
	return "Conversion catalog is disabled"
}

func statusCode(err error) int {
	var (
		badParameter ErrBadParameter
		notFound     catalog.ErrNotFound
		noCatalog    ErrNoCatalog
		invalidUnit  pt2.ErrInvalidUnit
		tooLarge     *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case pt2.IsFormatError(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &badParameter), errors.As(err, &invalidUnit):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &noCatalog):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func newApiError(err error) *ApiError {
	return &ApiError{
		Kind:  pt2.Kind(err),
		Error: err.Error(),
	}
}
