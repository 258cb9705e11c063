package envelope

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
)

// Pair is a single entry of the extra-data bag. A nil Value is preserved
// through the roundtrip, distinct from an empty string.
type Pair struct {
	Key   string
	Value *string
}

// Extra is an ordered mapping of string to nullable string, protected
// identically to the envelope for cross-redirect carry.
type Extra []Pair

// Get returns the value for key and whether the key is present.
// A present key with nil value yields ("", true).
func (e Extra) Get(key string) (string, bool) {
	for _, p := range e {
		if p.Key == key {
			if p.Value == nil {
				return "", true
			}
			return *p.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key in place, or appends a new entry,
// preserving insertion order. It returns the updated bag.
func (e Extra) Set(key string, value *string) Extra {
	for i, p := range e {
		if p.Key == key {
			e[i].Value = value
			return e
		}
	}
	return append(e, Pair{Key: key, Value: value})
}

// MarshalJSON renders the bag as a JSON object in insertion order, with
// nil values as JSON null.
func (e Extra) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if p.Value == nil {
			buf.WriteString("null")
			continue
		}
		v, err := json.Marshal(*p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeExtra(e Extra) ([]byte, error) {
	if len(e) > math.MaxUint16 {
		return nil, ErrFieldTooLong
	}
	b := binary.LittleEndian.AppendUint16(nil, uint16(len(e)))
	var err error
	for _, p := range e {
		if b, err = appendString(b, p.Key); err != nil {
			return nil, err
		}
		if p.Value == nil {
			b = append(b, 0)
			continue
		}
		b = append(b, 1)
		if b, err = appendString(b, *p.Value); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func decodeExtra(data []byte) (Extra, error) {
	r := reader{data: data}

	n, err := r.uint16()
	if err != nil {
		return nil, err
	}

	var e Extra
	for i := uint16(0); i < n; i++ {
		key, err := r.str()
		if err != nil {
			return nil, err
		}
		flag, err := r.byte()
		if err != nil {
			return nil, err
		}
		var value *string
		if flag == 1 {
			v, err := r.str()
			if err != nil {
				return nil, err
			}
			value = &v
		}
		e = append(e, Pair{Key: key, Value: value})
	}
	if !r.empty() {
		return nil, ErrMalformed
	}

	return e, nil
}
