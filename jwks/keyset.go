package jwks

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

type keyRef struct {
	algorithm Algorithm
	keyID     string
}

// KeySet is an immutable set of JSON Web Keys, unique by algorithm and kid.
// The zero value is an empty set.
type KeySet struct {
	keys map[keyRef]*JSONWebKey
}

// NewKeySet creates a set from keys. A later key replaces an earlier one with
// the same algorithm and kid.
func NewKeySet(keys ...*JSONWebKey) KeySet {
	set := KeySet{keys: make(map[keyRef]*JSONWebKey, len(keys))}
	for _, key := range keys {
		if key == nil {
			continue
		}
		set.keys[keyRef{algorithm: key.Algorithm(), keyID: key.KeyID()}] = key
	}

	return set
}

// Get looks up a key by algorithm and kid. A blank kid matches the key
// registered under DefaultKeyID.
func (s KeySet) Get(alg Algorithm, keyID string) (*JSONWebKey, bool) {
	key, ok := s.keys[keyRef{algorithm: alg, keyID: NormalizeKeyID(keyID)}]
	return key, ok
}

// Merge returns a new set holding the keys of both sets. Keys of other win on
// collision.
func (s KeySet) Merge(other KeySet) KeySet {
	merged := KeySet{keys: make(map[keyRef]*JSONWebKey, len(s.keys)+len(other.keys))}
	for ref, key := range s.keys {
		merged.keys[ref] = key
	}
	for ref, key := range other.keys {
		merged.keys[ref] = key
	}

	return merged
}

// Len returns the number of keys.
func (s KeySet) Len() int {
	return len(s.keys)
}

// IsEmpty reports whether the set holds no keys.
func (s KeySet) IsEmpty() bool {
	return len(s.keys) == 0
}

// Keys returns the keys ordered by algorithm and kid.
func (s KeySet) Keys() []*JSONWebKey {
	keys := make([]*JSONWebKey, 0, len(s.keys))
	for _, key := range s.keys {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Algorithm() != keys[j].Algorithm() {
			return keys[i].Algorithm() < keys[j].Algorithm()
		}
		return keys[i].KeyID() < keys[j].KeyID()
	})

	return keys
}

type rawKeySet struct {
	Keys []json.RawMessage `json:"keys"`
}

type rawKey struct {
	KeyType   string `json:"kty"`
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid"`
	Use       string `json:"use"`
	Modulus   string `json:"n"`
	Exponent  string `json:"e"`
	Value     string `json:"value"`
}

// Parse reads a JWKS document. Entries that cannot be understood are
// skipped. Parse never fails: an empty or broken document yields an empty set.
func Parse(body []byte) KeySet {
	if len(body) == 0 {
		return KeySet{}
	}

	var doc rawKeySet
	if err := json.Unmarshal(body, &doc); err != nil {
		return KeySet{}
	}

	keys := make([]*JSONWebKey, 0, len(doc.Keys))
	for _, entry := range doc.Keys {
		if key, ok := parseKey(entry); ok {
			keys = append(keys, key)
		}
	}

	return NewKeySet(keys...)
}

func parseKey(entry json.RawMessage) (*JSONWebKey, bool) {
	var raw rawKey
	if err := json.Unmarshal(entry, &raw); err != nil {
		return nil, false
	}

	if raw.Use != "" && !strings.EqualFold(raw.Use, "sig") {
		return nil, false
	}

	alg := Algorithm(raw.Algorithm)
	if alg == "" {
		var ok bool
		if alg, ok = AlgorithmFromKeyType(raw.KeyType); !ok {
			return nil, false
		}
	}
	if !alg.IsSupported() {
		return nil, false
	}

	switch {
	case raw.Modulus != "" && raw.Exponent != "":
		return NewRSAKey(alg, raw.KeyID, raw.Modulus, raw.Exponent), true
	case raw.Value != "":
		return NewPEMKey(alg, raw.KeyID, raw.Value), true
	default:
		return nil, false
	}
}
