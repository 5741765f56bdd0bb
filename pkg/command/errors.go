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

package command

import (
	"fmt"
)

// ErrApi returned when the API server answers with an error status
type ErrApi struct {
	Status  string
	Kind    string
	Message string
}

func (e ErrApi) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("API request failed: %s: %s: %s", e.Status, e.Kind, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("API request failed: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API request failed: %s", e.Status)
}

// ErrNoCatalog returned when a conversion is to be recorded but the catalog path is not configured
type ErrNoCatalog struct{}

func (e ErrNoCatalog) Error() string {
	return "Conversion catalog is disabled, set catalog path in the config"
}

// ErrSameFile returned when the output file is the input file
type ErrSameFile struct {
	Input  string
	Output string
}

func (e ErrSameFile) Error() string {
	return fmt.Sprintf("Output %s is the input file %s", e.Output, e.Input)
}

// ErrNoName returned when a conversion of stdin is to be recorded without a name
type ErrNoName struct{}

func (e ErrNoName) Error() string {
	return "Conversion of stdin has no name, set --name to record it in the catalog"
}
