package session

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// The session service stores the record as a flat object keyed by entry
// name: a "global" entry plus one entry per application namespace.
// MarshalJSON and UnmarshalJSON translate between that wire shape and
// the tagged struct.

const globalKey = "global"

func (s *Session) MarshalJSON() ([]byte, error) {
	wire := make(map[string]json.RawMessage, len(s.Namespaces)+1)
	if s.Global != nil {
		raw, err := json.Marshal(s.Global)
		if err != nil {
			return nil, errors.Wrap(err, "[Session.MarshalJSON] global entry")
		}
		wire[globalKey] = raw
	}
	for ns, creds := range s.Namespaces {
		raw, err := json.Marshal(creds)
		if err != nil {
			return nil, errors.Wrapf(err, "[Session.MarshalJSON] %q entry", ns)
		}
		wire[string(ns)] = raw
	}
	return json.Marshal(wire)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, "[Session.UnmarshalJSON] record is not an object")
	}

	s.Global = nil
	s.Namespaces = make(map[Namespace]Credentials, len(wire))

	for key, raw := range wire {
		if key == globalKey {
			var g Global
			if err := json.Unmarshal(raw, &g); err != nil {
				return errors.Wrap(err, "[Session.UnmarshalJSON] global entry")
			}
			s.Global = &g
			continue
		}
		var creds Credentials
		if err := json.Unmarshal(raw, &creds); err != nil {
			return errors.Wrapf(err, "[Session.UnmarshalJSON] %q entry", key)
		}
		s.Namespaces[Namespace(key)] = creds
	}
	return nil
}
