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
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-tttr/pkg/config"
	"jinr.ru/greenlab/go-tttr/pkg/pt2"
	"jinr.ru/greenlab/go-tttr/pkg/srv"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s%s", cfg.ApiAddr(), srv.ApiPrefix),
	}
}

func (c *ApiClient) conversionUrl(name string) string {
	return fmt.Sprintf("%s/conversions/%s", c.ApiPrefix, url.PathEscape(name))
}

func checkResponse(r *req.Resp) error {
	resp := r.Response()
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	apiErr := &srv.ApiError{}
	if err := r.ToJSON(apiErr); err != nil {
		return ErrApi{Status: resp.Status}
	}
	return ErrApi{Status: resp.Status, Kind: apiErr.Kind, Message: apiErr.Error}
}

func convertParams(opts pt2.Options, name string) req.QueryParam {
	params := req.QueryParam{
		srv.ResolutionParam:         strconv.FormatFloat(opts.Resolution, 'g', -1, 64),
		srv.AccumulateOverflowParam: strconv.FormatBool(opts.AccumulateOverflow),
		srv.ValidateParam:           strconv.FormatBool(opts.Validate),
	}
	if name != "" {
		params[srv.NameParam] = name
	}
	return params
}

func headerInt(r *req.Resp, name string) int64 {
	value, err := strconv.ParseInt(r.Response().Header.Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// Convert sends a PT2 file to the API server and saves the returned timestamps
// to outPath. A non empty name makes the server record the conversion.
func (c *ApiClient) Convert(inPath, outPath string, opts pt2.Options, name string) (*pt2.Summary, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r, err := req.Post(fmt.Sprintf("%s/convert", c.ApiPrefix), in, convertParams(opts, name),
		req.Header{"Content-Type": "application/octet-stream"})
	if err != nil {
		return nil, err
	}
	if err := checkResponse(r); err != nil {
		return nil, err
	}
	if err := r.ToFile(outPath); err != nil {
		return nil, err
	}
	timestamps := headerInt(r, srv.TimestampsResponseHeader)
	return &pt2.Summary{
		Name:               name,
		Resolution:         opts.Resolution,
		AccumulateOverflow: opts.AccumulateOverflow,
		Records:            headerInt(r, srv.RecordsResponseHeader),
		Timestamps:         timestamps,
		Overflows:          headerInt(r, srv.OverflowsResponseHeader),
		Markers:            headerInt(r, srv.MarkersResponseHeader),
		Bytes:              timestamps * pt2.TimestampSize,
	}, nil
}

// Header sends the beginning of a PT2 file to the API server and returns the parsed header
func (c *ApiClient) Header(path string, validate bool) (*pt2.Header, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r, err := req.Post(fmt.Sprintf("%s/header", c.ApiPrefix), in,
		req.QueryParam{srv.ValidateParam: strconv.FormatBool(validate)},
		req.Header{"Content-Type": "application/octet-stream"})
	if err != nil {
		return nil, err
	}
	if err := checkResponse(r); err != nil {
		return nil, err
	}
	header := &pt2.Header{}
	if err := r.ToJSON(header); err != nil {
		return nil, err
	}
	return header, nil
}

// Conversions sends request to list conversions recorded by the API server
func (c *ApiClient) Conversions() ([]*pt2.Summary, error) {
	r, err := req.Get(fmt.Sprintf("%s/conversions", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(r); err != nil {
		return nil, err
	}
	var summaries []*pt2.Summary
	if err := r.ToJSON(&summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Conversion sends request to get one recorded conversion
func (c *ApiClient) Conversion(name string) (*pt2.Summary, error) {
	r, err := req.Get(c.conversionUrl(name))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(r); err != nil {
		return nil, err
	}
	summary := &pt2.Summary{}
	if err := r.ToJSON(summary); err != nil {
		return nil, err
	}
	return summary, nil
}
