package pve

import (
	"sort"
	"strconv"
)

// Params is a set of string-valued request parameters. PVE encodes booleans
// as "1"/"0" and accepts everything else as plain strings, so a flat string
// map covers every endpoint. Encoding order is stable (sorted keys).
type Params map[string]string

// NewParams returns an empty parameter set.
func NewParams() Params {
	return Params{}
}

// Set stores a key/value pair and returns the set for chaining.
func (p Params) Set(key, value string) Params {
	p[key] = value
	return p
}

// SetOpt stores the value only when it is non-empty.
func (p Params) SetOpt(key, value string) Params {
	if value != "" {
		p[key] = value
	}
	return p
}

// SetInt stores an integer value.
func (p Params) SetInt(key string, value int) Params {
	p[key] = strconv.Itoa(value)
	return p
}

// SetUint stores an unsigned integer value.
func (p Params) SetUint(key string, value uint64) Params {
	p[key] = strconv.FormatUint(value, 10)
	return p
}

// SetBool stores a boolean as "1" or "0".
func (p Params) SetBool(key string, value bool) Params {
	if value {
		p[key] = "1"
	} else {
		p[key] = "0"
	}
	return p
}

// Get returns the stored value, or the empty string.
func (p Params) Get(key string) string {
	return p[key]
}

// Has reports whether the key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Merge copies all entries from other into p, overwriting duplicates.
func (p Params) Merge(other Params) Params {
	for key, value := range other {
		p[key] = value
	}
	return p
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	clone := make(Params, len(p))
	for key, value := range p {
		clone[key] = value
	}
	return clone
}

func itoa(value int) string {
	return strconv.Itoa(value)
}

// Keys returns the keys in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
