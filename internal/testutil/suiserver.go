package testutil

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/pkg/movetypes"
	"github.com/vk/movegen/pkg/movetypes/bcs"
)

// FakePackage is a package served by SuiServer. Modules are encoded with
// EncodeModule under their own Address, which plays the role of the
// original package ID. When Origins is nil every datatype is reported as
// defined at its module's address.
type FakePackage struct {
	Address model.Address
	Version uint64
	Modules []*model.Module
	Origins []model.TypeOrigin
}

// SuiServer is an httptest server answering the GraphQL package query and
// Move Registry name lookups.
type SuiServer struct {
	*httptest.Server

	mu       sync.Mutex
	packages map[model.Address]FakePackage
	names    map[string]model.Address
	raw      map[model.Address]string

	GraphQLRequests atomic.Int32
	MVRRequests     atomic.Int32
}

var addressArg = regexp.MustCompile(`address:\s*"([^"]+)"`)

// NewSuiServer starts a server serving pkgs. It is closed when the test ends.
func NewSuiServer(t *testing.T, pkgs ...FakePackage) *SuiServer {
	t.Helper()
	s := &SuiServer{
		packages: map[model.Address]FakePackage{},
		names:    map[string]model.Address{},
		raw:      map[model.Address]string{},
	}
	for _, p := range pkgs {
		s.AddPackage(p)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", s.handleGraphQL)
	mux.HandleFunc("/mvr/v1/resolution/", s.handleResolution)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// GraphQLURL is the endpoint to pass to the provider.
func (s *SuiServer) GraphQLURL() string { return s.URL + "/graphql" }

// MVRURL is the endpoint to pass to the resolver.
func (s *SuiServer) MVRURL() string { return s.URL + "/mvr" }

// AddPackage makes p available, replacing any package at the same address.
func (s *SuiServer) AddPackage(p FakePackage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[p.Address] = p
	delete(s.raw, p.Address)
}

// SetRawModuleBcs makes the server answer queries for addr with the given
// moduleBcs string and no type origins.
func (s *SuiServer) SetRawModuleBcs(addr model.Address, moduleBcs string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[addr] = moduleBcs
}

// Name registers a Move Registry name for addr.
func (s *SuiServer) Name(name string, addr model.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[name] = addr
}

type fakeOrigin struct {
	Module     string `json:"module"`
	Struct     string `json:"struct"`
	DefiningID string `json:"definingId"`
}

type fakePackageData struct {
	ModuleBcs   string       `json:"moduleBcs"`
	TypeOrigins []fakeOrigin `json:"typeOrigins"`
	Version     uint64       `json:"version"`
}

func (s *SuiServer) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	s.GraphQLRequests.Add(1)
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m := addressArg.FindStringSubmatch(req.Query)
	if m == nil {
		writeJSON(w, map[string]any{"errors": []map[string]string{{"message": "missing package address"}}})
		return
	}
	addr, err := movetypes.ParseAddress(m[1])
	if err != nil {
		writeJSON(w, map[string]any{"errors": []map[string]string{{"message": err.Error()}}})
		return
	}

	s.mu.Lock()
	p, ok := s.packages[addr]
	raw, isRaw := s.raw[addr]
	s.mu.Unlock()

	switch {
	case isRaw:
		writeJSON(w, map[string]any{"data": map[string]any{"package": fakePackageData{ModuleBcs: raw, Version: 1}}})
	case !ok:
		writeJSON(w, map[string]any{"data": map[string]any{"package": nil}})
	default:
		writeJSON(w, map[string]any{"data": map[string]any{"package": encodePackage(p)}})
	}
}

func (s *SuiServer) handleResolution(w http.ResponseWriter, r *http.Request) {
	s.MVRRequests.Add(1)
	name := strings.TrimPrefix(r.URL.Path, "/mvr/v1/resolution/")
	s.mu.Lock()
	addr, ok := s.names[name]
	s.mu.Unlock()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"name not found"}`))
		return
	}
	writeJSON(w, map[string]string{"package_id": addr.String()})
}

func encodePackage(p FakePackage) fakePackageData {
	payloads := make(map[string][]byte, len(p.Modules))
	for _, m := range p.Modules {
		payloads[m.Name] = EncodeModule(m)
	}
	raw, err := bcs.Marshal(payloads)
	if err != nil {
		panic(err)
	}

	origins := p.Origins
	if origins == nil {
		for _, m := range p.Modules {
			for _, name := range m.DatatypeNames() {
				origins = append(origins, model.TypeOrigin{Module: m.Name, Datatype: name, DefiningID: m.Address})
			}
		}
	}
	out := fakePackageData{
		ModuleBcs:   base64.StdEncoding.EncodeToString(raw),
		TypeOrigins: make([]fakeOrigin, 0, len(origins)),
		Version:     p.Version,
	}
	for _, o := range origins {
		out.TypeOrigins = append(out.TypeOrigins, fakeOrigin{Module: o.Module, Struct: o.Datatype, DefiningID: o.DefiningID.String()})
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
