package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gatewalk/pkg/buildinfo"
	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/query"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

// GateRef identifies a gate in responses.
type GateRef struct {
	ID   netlist.GateID `json:"id"`
	Name string         `json:"name"`
	Type string         `json:"type"`
}

// Connection is a connected pin of a gate.
type Connection struct {
	Pin     string        `json:"pin"`
	Net     netlist.NetID `json:"net"`
	NetName string        `json:"net_name"`
}

// GateInfo is the response of /gates/{id}.
type GateInfo struct {
	GateRef
	Module     string       `json:"module"`
	Properties []string     `json:"properties"`
	Inputs     []Connection `json:"inputs"`
	Outputs    []Connection `json:"outputs"`
}

// Distance is the response of /distance.
type Distance struct {
	From     GateRef `json:"from"`
	Found    bool    `json:"found"`
	Distance int     `json:"distance"`
}

// Health is the response of /healthz.
type Health struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Netlist     string `json:"netlist"`
	Gates       int    `json:"gates"`
	Nets        int    `json:"nets"`
	Abstraction bool   `json:"abstraction"`
	Stale       bool   `json:"stale"`
}

type errorBody struct {
	Code  errors.Code `json:"code,omitempty"`
	Error string      `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := Health{
		Status:      "ok",
		Version:     buildinfo.Version,
		Netlist:     s.nl.Name(),
		Gates:       s.nl.NumGates(),
		Nets:        s.nl.NumNets(),
		Abstraction: s.dec != nil,
	}
	if s.dec != nil && s.dec.Abstraction().Stale() {
		h.Status = "stale"
		h.Stale = true
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	g, err := s.gateFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	info := GateInfo{
		GateRef:    ref(g),
		Properties: make([]string, 0),
		Inputs:     s.connections(g.FanInEndpoints()),
		Outputs:    s.connections(g.FanOutEndpoints()),
	}
	if m := s.nl.Module(g.Module()); m != nil {
		info.Module = m.Name()
	}
	for _, p := range g.Type().Properties() {
		info.Properties = append(info.Properties, p.String())
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) connections(eps []netlist.Endpoint) []Connection {
	out := make([]Connection, 0, len(eps))
	for _, ep := range eps {
		c := Connection{Pin: ep.Pin, Net: ep.Net}
		if n := s.nl.Net(ep.Net); n != nil {
			c.NetName = n.Name()
		}
		out = append(out, c)
	}
	return out
}

func (s *Server) handleSequential(w http.ResponseWriter, r *http.Request) {
	g, err := s.gateFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := r.URL.Query()
	dir, err := direction(q.Get("dir"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := []traversal.SequentialOption{}
	if d := q.Get("depth"); d != "" {
		depth, err := strconv.Atoi(d)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidArgument, "invalid depth %q", d))
			return
		}
		opts = append(opts, traversal.WithDepth(depth))
	}
	if f := q.Get("forbid"); f != "" {
		var pins []netlist.PinType
		for _, name := range strings.Split(f, ",") {
			pt, err := netlist.ParsePinType(strings.TrimSpace(name))
			if err != nil {
				s.writeError(w, err)
				return
			}
			pins = append(pins, pt)
		}
		opts = append(opts, traversal.WithForbiddenPins(pins...))
	}

	res, err := s.tr.NextSequentialGates(g, dir, opts...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refs(res))
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	g, err := s.gateFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := r.URL.Query()
	res, err := s.tr.GateChain(g, list(q.Get("in")), list(q.Get("out")), nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refs(res))
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := s.gateByRef(q.Get("from"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	to, err := s.gateByRef(q.Get("to"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	pd, err := pinDirection(q.Get("dir"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.tr.ShortestPath(from, to, pd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refs(res))
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	if s.dec == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "server runs without an abstraction"))
		return
	}
	q := r.URL.Query()
	from, err := s.gateByRef(q.Get("from"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	match, err := query.Compile(q.Get("filter"), s.nl)
	if err != nil {
		s.writeError(w, err)
		return
	}
	pd, err := pinDirection(q.Get("dir"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	dist, ok, err := s.dec.GateShortestPathDistance(from, func(ep netlist.Endpoint) bool {
		g := s.nl.Gate(ep.Gate)
		return g != nil && match(g)
	}, pd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Distance{From: ref(from), Found: ok, Distance: dist})
}

// =============================================================================
// Parameters
// =============================================================================

func (s *Server) gateFromPath(r *http.Request) (*netlist.Gate, error) {
	return s.gateByRef(chi.URLParam(r, "id"))
}

// gateByRef resolves a numeric id, "#id" or a unique gate name.
func (s *Server) gateByRef(v string) (*netlist.Gate, error) {
	if v == "" {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "missing gate parameter")
	}
	if id, err := strconv.ParseUint(strings.TrimPrefix(v, "#"), 10, 32); err == nil {
		if g := s.nl.Gate(netlist.GateID(id)); g != nil {
			return g, nil
		}
		return nil, errors.New(errors.ErrCodeNotFound, "no gate with id %d", id)
	}
	matches := s.nl.GatesWhere(func(g *netlist.Gate) bool { return g.Name() == v })
	switch len(matches) {
	case 0:
		return nil, errors.New(errors.ErrCodeNotFound, "no gate named %q", v)
	case 1:
		return matches[0], nil
	}
	return nil, errors.New(errors.ErrCodeInvalidArgument, "gate name %q is ambiguous", v)
}

func direction(v string) (traversal.Direction, error) {
	if v == "" {
		return traversal.Forward, nil
	}
	return traversal.ParseDirection(strings.ToLower(v))
}

func pinDirection(v string) (netlist.PinDirection, error) {
	if v == "" {
		return netlist.Output, nil
	}
	return netlist.ParsePinDirection(v)
}

func list(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// =============================================================================
// Responses
// =============================================================================

func ref(g *netlist.Gate) GateRef {
	return GateRef{ID: g.ID(), Name: g.Name(), Type: g.Type().Name()}
}

func refs(gates []*netlist.Gate) []GateRef {
	out := make([]GateRef, len(gates))
	for i, g := range gates {
		out[i] = ref(g)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps error codes onto HTTP statuses.
func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidArgument, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidExpression, errors.ErrCodeUnsupportedDirection:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNotInNetlist, errors.ErrCodeLookupMiss:
		return http.StatusNotFound
	case errors.ErrCodeConcurrentMutation:
		return http.StatusConflict
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError && s.logger != nil {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Code: errors.GetCode(err), Error: errors.UserMessage(err)})
}
