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
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-tttr/pkg/log"
	"jinr.ru/greenlab/go-tttr/pkg/pt2"
)

const (
	BucketPrefix = "conversion_"
	SummaryKey   = "summary"
	RunsKey      = "runs"
	OpenTimeout  = time.Second
)

// Catalog keeps the last conversion summary of every input, one bucket per input
type Catalog struct {
	DB *bbolt.DB
}

// Open opens the catalog file exclusively. Only one process can hold it, a
// running API server keeps it open until it stops.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: OpenTimeout})
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, ErrLocked{Path: path}
	}
	if err != nil {
		return nil, err
	}
	return &Catalog{
		DB: db,
	}, nil
}

func (c *Catalog) Close() error {
	return c.DB.Close()
}

func BucketName(name string) string {
	return BucketPrefix + name
}

// Put stores the summary under summary.Name and counts the run
func (c *Catalog) Put(summary *pt2.Summary) error {
	if summary.Name == "" {
		return ErrNoName{}
	}
	log.Debug("Recording conversion: %s", summary.Name)
	data, err := yaml.Marshal(summary)
	if err != nil {
		return err
	}
	return c.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketName(summary.Name)))
		if err != nil {
			return err
		}
		runs, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put([]byte(RunsKey), []byte(strconv.FormatUint(runs, 10))); err != nil {
			return err
		}
		return b.Put([]byte(SummaryKey), data)
	})
}

// Get returns the last summary recorded under name
func (c *Catalog) Get(name string) (*pt2.Summary, error) {
	log.Debug("Getting conversion: %s", name)
	summary := &pt2.Summary{}
	if err := c.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(name)))
		if b == nil {
			return ErrNotFound{Name: name}
		}
		data := b.Get([]byte(SummaryKey))
		if data == nil {
			return ErrNotFound{Name: name}
		}
		return yaml.Unmarshal(data, summary)
	}); err != nil {
		return nil, err
	}
	return summary, nil
}

// Runs returns how many times the input was converted
func (c *Catalog) Runs(name string) (uint64, error) {
	var runs uint64
	if err := c.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(name)))
		if b == nil {
			return ErrNotFound{Name: name}
		}
		var err error
		runs, err = strconv.ParseUint(string(b.Get([]byte(RunsKey))), 10, 64)
		return err
	}); err != nil {
		return 0, err
	}
	return runs, nil
}

// List returns all recorded summaries ordered by name
func (c *Catalog) List() ([]*pt2.Summary, error) {
	log.Debug("Getting all conversions")
	var summaries []*pt2.Summary
	if err := c.DB.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			if !strings.HasPrefix(string(name), BucketPrefix) {
				return nil
			}
			data := b.Get([]byte(SummaryKey))
			if data == nil {
				return nil
			}
			summary := &pt2.Summary{}
			if err := yaml.Unmarshal(data, summary); err != nil {
				log.Error("Error while unmarshalling conversion summary %s: %s", name, err)
				return err
			}
			summaries = append(summaries, summary)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}
