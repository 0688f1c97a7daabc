// Package rpc implements the internal RPC dispatch surface: a method
// registry behind a single POST endpoint, speaking the same
// {"name", "args"} shape as the session service, and an authorization
// gate that admits only callers holding the required application
// namespace token.
package rpc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// HandlerFunc executes one RPC method. args is the raw JSON "args"
// member of the request, possibly nil.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Method is one named entry of the dispatch surface.
type Method struct {
	Name string
	Docs string
	Fn   HandlerFunc
}

func NewMethod(name, docs string, fn HandlerFunc) Method {
	return Method{Name: name, Docs: docs, Fn: fn}
}

// Dispatcher routes {"name", "args"} requests to registered methods.
// A "methods" discovery method is always present.
type Dispatcher struct {
	methods map[string]Method
	ordered []Method
}

func NewDispatcher(methods ...Method) *Dispatcher {
	d := &Dispatcher{methods: make(map[string]Method, len(methods)+1)}
	d.register(Method{
		Name: methodsName,
		Docs: "list the methods this endpoint exposes",
		Fn:   d.listMethods,
	})
	for _, m := range methods {
		d.register(m)
	}
	return d
}

func (d *Dispatcher) register(m Method) {
	d.methods[m.Name] = m
	d.ordered = append(d.ordered, m)
}

type rpcRequest struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Handler returns the HTTP handler for the dispatch endpoint.
func (d *Dispatcher) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed rpc request")
			return
		}
		method, ok := d.methods[req.Name]
		if !ok {
			writeError(w, http.StatusNotFound, "unknown method "+req.Name)
			return
		}
		result, err := method.Fn(r.Context(), req.Args)
		if err != nil {
			log.Error().Err(err).Str("method", req.Name).Msg("rpc method failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	}
}

const methodsName = "methods"

// MethodInfo is the discovery document entry for one method.
type MethodInfo struct {
	Name string `json:"name"`
	Docs string `json:"docs,omitempty"`
}

func (d *Dispatcher) listMethods(context.Context, json.RawMessage) (any, error) {
	infos := make([]MethodInfo, 0, len(d.ordered))
	for _, m := range d.ordered {
		infos = append(infos, MethodInfo{Name: m.Name, Docs: m.Docs})
	}
	return infos, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
