package split

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Entry is one (participant key, value) pair of policy parameters.
type Entry struct {
	Key   string
	Value decimal.Decimal
}

// Params is an ordered participant→value mapping. The order in which keys
// were supplied decides who absorbs rounding remainders.
type Params []Entry

// P builds Params from alternating key/value pairs, e.g. P("a", "50", "b", "50").
// It panics on malformed input and is meant for tests and fixtures.
func P(pairs ...string) Params {
	if len(pairs)%2 != 0 {
		panic("split.P: odd number of arguments")
	}
	out := make(Params, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Entry{Key: pairs[i], Value: decimal.RequireFromString(pairs[i+1])})
	}
	return out
}

// Keys returns the keys in supplied order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, e := range p {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON writes the entries as a JSON object in stored order.
func (p Params) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(e.Value.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object token by token so that key order survives.
// Values may be numbers or numeric strings.
func (p *Params) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("split params: expected object, got %v", tok)
	}

	out := Params{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("split params: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var value decimal.Decimal
		if err := value.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("split params: value for %q: %w", key, err)
		}
		out = append(out, Entry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out
	return nil
}

// Details carries the policy-specific parameters. Only the field matching the
// chosen policy is consulted.
type Details struct {
	Amounts  Params `json:"amounts,omitempty"`
	Percents Params `json:"percents,omitempty"`
	Shares   Params `json:"shares,omitempty"`
}

// IsZero reports whether no parameters were supplied.
func (d Details) IsZero() bool {
	return len(d.Amounts) == 0 && len(d.Percents) == 0 && len(d.Shares) == 0
}
