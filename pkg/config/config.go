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

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type ConvertConfig struct {
	// Resolution is the output tick in seconds
	Resolution float64 `yaml:"resolution"`
	// AccumulateOverflow adds the counter wrap period to timestamps
	// following each overflow record instead of dropping overflows
	AccumulateOverflow bool   `yaml:"accumulateOverflow"`
	Validate           bool   `yaml:"validate"`
	Suffix             string `yaml:"suffix,omitempty"`
}

type CatalogConfig struct {
	Path string `yaml:"path,omitempty"`
}

type ApiConfig struct {
	Address string `yaml:"address,omitempty"`
	Port    int    `yaml:"port,omitempty"`
	// MaxBodySize is the largest accepted request body in bytes, 0 means no limit.
	// The convert endpoint keeps the whole output in memory, which is about
	// twice the body size.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`
}

type Config struct {
	LogLevel       string `yaml:"logLevel,omitempty"`
	*ConvertConfig `yaml:"convert,omitempty"`
	*CatalogConfig `yaml:"catalog,omitempty"`
	*ApiConfig     `yaml:"api,omitempty"`
	filepath       string
}

// ErrConfigFileExists returned when persisting would overwrite an existing file
type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("Config file already exists: %s", e.Path)
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

// ApiAddr returns host:port the API server binds to
func (c *Config) ApiAddr() string {
	return fmt.Sprintf("%s:%d", c.ApiConfig.Address, c.ApiConfig.Port)
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(c.filepath, data, 0644)
}

func (c *Config) LoadConfig() error {
	data, err := ioutil.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Load reads the config file if there is one. Defaults stay in place otherwise.
func (c *Config) Load() error {
	if _, err := os.Stat(c.filepath); os.IsNotExist(err) {
		return nil
	}
	return c.LoadConfig()
}

func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("---\n%s", string(data))
}

func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), ConfigFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		ConvertConfig: &ConvertConfig{
			Resolution:         DefaultResolution,
			AccumulateOverflow: DefaultAccumulateOverflow,
			Validate:           DefaultValidate,
			Suffix:             DefaultTimesSuffix,
		},
		CatalogConfig: &CatalogConfig{
			Path: filepath.Join(DefaultConfigDir(), CatalogFile),
		},
		ApiConfig: &ApiConfig{
			Address:     DefaultApiAddress,
			Port:        DefaultApiPort,
			MaxBodySize: DefaultApiMaxBodySize,
		},
		filepath: DefaultConfigPath(),
	}
}
