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

package catalog

import (
	"fmt"
)

// ErrNotFound returned when there is no conversion recorded under the name
type ErrNotFound struct {
	Name string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("Conversion not found: %s", e.Name)
}

// ErrNoName returned when a summary without a name is put into the catalog
type ErrNoName struct{}

func (e ErrNoName) Error() string {
	return "Conversion summary has no name"
}

// ErrLocked returned when another process, usually a running API server, holds the catalog file
type ErrLocked struct {
	Path string
}

func (e ErrLocked) Error() string {
	return fmt.Sprintf("Catalog %s is locked by another process, e.g. a running go-tttr serve; "+
		"use go-tttr remote to work with the server catalog", e.Path)
}
