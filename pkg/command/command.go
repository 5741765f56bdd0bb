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
	"context"
	"fmt"
	"io"
	"os"

	"jinr.ru/greenlab/go-tttr/pkg/catalog"
	"jinr.ru/greenlab/go-tttr/pkg/config"
	"jinr.ru/greenlab/go-tttr/pkg/log"
	"jinr.ru/greenlab/go-tttr/pkg/pt2"
	"jinr.ru/greenlab/go-tttr/pkg/srv"
)

// StdioName stands for stdin or stdout in place of a file name
const StdioName = "-"

// OpenCatalog opens the catalog from the config. It returns nil when the catalog is disabled.
func OpenCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogConfig == nil || cfg.CatalogConfig.Path == "" {
		return nil, nil
	}
	return catalog.Open(cfg.CatalogConfig.Path)
}

// RequireCatalog opens the catalog from the config, a disabled catalog is an error
func RequireCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := OpenCatalog(cfg)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNoCatalog{}
	}
	return cat, nil
}

// StartApiServer runs the API server until ctx is cancelled
func StartApiServer(ctx context.Context, cfg *config.Config) error {
	cat, err := OpenCatalog(cfg)
	if err != nil {
		return err
	}
	if cat != nil {
		defer cat.Close()
	}
	s, err := srv.NewApiServer(cfg, cat)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// ConvertFile converts inPath to outPath. StdioName reads stdin or writes
// stdout, an empty outPath means the input name with the configured suffix.
// The output produced before an error is kept.
func ConvertFile(inPath, outPath string, opts pt2.Options, cfg *config.Config, stdin io.Reader, stdout io.Writer) (*pt2.Summary, error) {
	var in io.Reader = stdin
	var inFile *os.File
	if inPath != StdioName {
		f, err := os.Open(inPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
		inFile = f
	}

	if outPath == "" {
		if inPath == StdioName {
			outPath = StdioName
		} else {
			outPath = pt2.TimesFileName(inPath, cfg.Suffix)
		}
	}
	if inFile != nil && outPath != StdioName {
		if err := checkNotSameFile(inFile, outPath); err != nil {
			return nil, err
		}
	}

	var summary *pt2.Summary
	var err error
	if outPath == StdioName {
		summary, err = pt2.NewSession(in, stdout, opts).Convert()
	} else {
		out, createErr := pt2.CreateTimesFile(outPath)
		if createErr != nil {
			return nil, createErr
		}
		summary, err = pt2.NewSession(in, out, opts).Convert()
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}
	if summary != nil && inPath != StdioName {
		summary.Name = inPath
	}
	if err != nil {
		return summary, fmt.Errorf("%s: %w", inPath, err)
	}
	log.Info("Converted %s to %s: records: %d timestamps: %d", inPath, outPath, summary.Records, summary.Timestamps)
	return summary, nil
}

// checkNotSameFile refuses an output path which names the opened input,
// creating the output would truncate the input before it is read
func checkNotSameFile(in *os.File, outPath string) error {
	inInfo, err := in.Stat()
	if err != nil {
		return err
	}
	outInfo, err := os.Stat(outPath)
	if err != nil {
		// nothing to compare against, the output does not exist yet
		return nil
	}
	if os.SameFile(inInfo, outInfo) {
		return ErrSameFile{Input: in.Name(), Output: outPath}
	}
	return nil
}

// ReadHeaderFile reads and checks the header of a PT2 file
func ReadHeaderFile(path string, validate bool, stdin io.Reader) (*pt2.Header, error) {
	var in io.Reader = stdin
	if path != StdioName {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	return pt2.ReadHeader(in, validate)
}
