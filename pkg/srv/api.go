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
	"bytes"
	_ "embed"
	"net/http"
	"strconv"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/runtime"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-tttr/pkg/catalog"
	"jinr.ru/greenlab/go-tttr/pkg/config"
	"jinr.ru/greenlab/go-tttr/pkg/log"
	"jinr.ru/greenlab/go-tttr/pkg/pt2"
)

const (
	ApiPrefix                = "/api"
	ResolutionParam          = "resolution"
	AccumulateOverflowParam  = "accumulate_overflow"
	ValidateParam            = "validate"
	NameParam                = "name"
	RecordsResponseHeader    = "X-Tttr-Records"
	TimestampsResponseHeader = "X-Tttr-Timestamps"
	OverflowsResponseHeader  = "X-Tttr-Overflows"
	MarkersResponseHeader    = "X-Tttr-Markers"
)

//go:embed swagger.json
var swaggerJSON []byte

type ApiServer struct {
	*config.Config
	*mux.Router
	// Catalog records conversions which carry a name, it is optional
	Catalog *catalog.Catalog
	doc     *loads.Document
	json    runtime.Producer
}

func NewApiServer(cfg *config.Config, cat *catalog.Catalog) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s", cfg.ApiAddr())
	doc, err := loads.Analyzed(swaggerJSON, "")
	if err != nil {
		return nil, err
	}
	s := &ApiServer{
		Config:  cfg,
		Catalog: cat,
		doc:     doc,
		json:    runtime.JSONProducer(),
	}
	s.configureRouter()
	return s, nil
}

// Handler returns the router wrapped into access logging and panic recovery
func (s *ApiServer) Handler() http.Handler {
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.LoggingHandler(log.Writer(), s.Router))
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter().SkipClean(true)
	subRouter := s.Router.PathPrefix(ApiPrefix).Subrouter()
	subRouter.HandleFunc("/convert", s.handleConvert()).Methods("POST")
	subRouter.HandleFunc("/header", s.handleHeader()).Methods("POST")
	subRouter.HandleFunc("/conversions", s.handleConversions()).Methods("GET")
	subRouter.HandleFunc("/conversions/{name:.+}", s.handleConversion()).Methods("GET")
	subRouter.HandleFunc("/swagger.json", s.handleSwagger()).Methods("GET")
	log.Debug("API routes loaded from swagger %s: base path: %s", s.doc.Version(), s.doc.BasePath())
}

func (s *ApiServer) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(runtime.HeaderContentType, runtime.JSONMime)
	w.WriteHeader(status)
	if err := s.json.Produce(w, v); err != nil {
		log.Error("Error while writing response: %s", err)
	}
}

func (s *ApiServer) writeError(w http.ResponseWriter, err error) {
	status := statusCode(err)
	log.Debug("Request failed: status: %d error: %s", status, err)
	s.writeJSON(w, status, newApiError(err))
}

func parseBool(r *http.Request, name string, value bool) (bool, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return value, nil
	}
	parsed, err := strconv.ParseBool(str)
	if err != nil {
		return false, ErrBadParameter{Name: name, Value: str}
	}
	return parsed, nil
}

// limitBody caps the request body at the configured size
func (s *ApiServer) limitBody(w http.ResponseWriter, r *http.Request) {
	if s.Config.MaxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxBodySize)
	}
}

func (s *ApiServer) options(r *http.Request) (pt2.Options, error) {
	opts := pt2.Options{
		Resolution:         s.Config.Resolution,
		AccumulateOverflow: s.Config.AccumulateOverflow,
		Validate:           s.Config.Validate,
	}
	if str := r.URL.Query().Get(ResolutionParam); str != "" {
		resolution, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return opts, ErrBadParameter{Name: ResolutionParam, Value: str}
		}
		opts.Resolution = resolution
	}
	var err error
	if opts.AccumulateOverflow, err = parseBool(r, AccumulateOverflowParam, opts.AccumulateOverflow); err != nil {
		return opts, err
	}
	if opts.Validate, err = parseBool(r, ValidateParam, opts.Validate); err != nil {
		return opts, err
	}
	return opts, nil
}

// handleConvert converts the request body. The output is buffered so that a
// malformed input gives an error response instead of a cut off stream.
func (s *ApiServer) handleConvert() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.options(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		name := r.URL.Query().Get(NameParam)
		log.Debug("Handling convert request: name: %s resolution: %g", name, opts.Resolution)
		s.limitBody(w, r)

		out := &bytes.Buffer{}
		summary, err := pt2.NewSession(r.Body, out, opts).Convert()
		if err != nil {
			s.writeError(w, err)
			return
		}
		summary.Name = name
		if name != "" && s.Catalog != nil {
			if err := s.Catalog.Put(summary); err != nil {
				log.Error("Error while recording conversion %s: %s", name, err)
			}
		}

		w.Header().Set(runtime.HeaderContentType, runtime.DefaultMime)
		w.Header().Set(RecordsResponseHeader, strconv.FormatInt(summary.Records, 10))
		w.Header().Set(TimestampsResponseHeader, strconv.FormatInt(summary.Timestamps, 10))
		w.Header().Set(OverflowsResponseHeader, strconv.FormatInt(summary.Overflows, 10))
		w.Header().Set(MarkersResponseHeader, strconv.FormatInt(summary.Markers, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := out.WriteTo(w); err != nil {
			log.Error("Error while writing timestamps: %s", err)
		}
	}
}

func (s *ApiServer) handleHeader() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		validate, err := parseBool(r, ValidateParam, s.Config.Validate)
		if err != nil {
			s.writeError(w, err)
			return
		}
		log.Debug("Handling header request")
		s.limitBody(w, r)
		header, err := pt2.ReadHeader(r.Body, validate)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, header)
	}
}

func (s *ApiServer) handleConversions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling conversions request")
		if s.Catalog == nil {
			s.writeError(w, ErrNoCatalog{})
			return
		}
		summaries, err := s.Catalog.List()
		if err != nil {
			s.writeError(w, err)
			return
		}
		if summaries == nil {
			summaries = []*pt2.Summary{}
		}
		s.writeJSON(w, http.StatusOK, summaries)
	}
}

func (s *ApiServer) handleConversion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		log.Debug("Handling conversion request: name: %s", name)
		if s.Catalog == nil {
			s.writeError(w, ErrNoCatalog{})
			return
		}
		summary, err := s.Catalog.Get(name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, summary)
	}
}

func (s *ApiServer) handleSwagger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(runtime.HeaderContentType, runtime.JSONMime)
		w.Write(s.doc.Raw())
	}
}
