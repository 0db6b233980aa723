package jwtgenerator

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
)

// Paths served by IdentityServer.
const (
	TokenKeysPath  = "/token_keys"
	CertsPath      = "/oauth2/certs"
	DiscoveryPath  = "/.well-known/openid-configuration"
	ProofTokenPath = "/v1/prooftoken"
)

// IdentityServer is a local stand-in for XSUAA and IAS. It serves the keys
// of its key pairs at TokenKeysPath and CertsPath, a discovery document
// pointing to CertsPath, and proof token data, and counts the requests.
type IdentityServer struct {
	*httptest.Server

	mu         sync.RWMutex
	keys       []*KeyPair
	proofToken []byte
	headers    http.Header

	jwksRequests       atomic.Int32
	discoveryRequests  atomic.Int32
	proofTokenRequests atomic.Int32
}

// NewIdentityServer starts an IdentityServer serving keys.
// Callers must Close it.
func NewIdentityServer(keys ...*KeyPair) *IdentityServer {
	s := &IdentityServer{keys: keys, proofToken: []byte("[]")}

	mux := http.NewServeMux()
	mux.HandleFunc(TokenKeysPath, s.serveKeys)
	mux.HandleFunc(CertsPath, s.serveKeys)
	mux.HandleFunc(DiscoveryPath, s.serveDiscovery)
	mux.HandleFunc(ProofTokenPath, s.serveProofToken)

	s.Server = httptest.NewServer(mux)

	return s
}

// SetKeys replaces the served keys, e.g. to simulate a key rotation.
func (s *IdentityServer) SetKeys(keys ...*KeyPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = keys
}

// SetProofTokenData replaces the served proof token data.
func (s *IdentityServer) SetProofTokenData(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proofToken = data
}

// JWKSRequests returns the number of key set requests served.
func (s *IdentityServer) JWKSRequests() int {
	return int(s.jwksRequests.Load())
}

// DiscoveryRequests returns the number of discovery requests served.
func (s *IdentityServer) DiscoveryRequests() int {
	return int(s.discoveryRequests.Load())
}

// ProofTokenRequests returns the number of proof token requests served.
func (s *IdentityServer) ProofTokenRequests() int {
	return int(s.proofTokenRequests.Load())
}

// LastRequestHeader returns a header of the most recent key set request.
func (s *IdentityServer) LastRequestHeader(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.headers == nil {
		return ""
	}

	return s.headers.Get(name)
}

func (s *IdentityServer) serveKeys(w http.ResponseWriter, r *http.Request) {
	s.jwksRequests.Add(1)

	s.mu.Lock()
	s.headers = r.Header.Clone()
	keys := s.keys
	s.mu.Unlock()

	body, err := JWKS(keys...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *IdentityServer) serveDiscovery(w http.ResponseWriter, _ *http.Request) {
	s.discoveryRequests.Add(1)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"issuer":                 s.URL,
		"jwks_uri":               s.URL + CertsPath,
		"token_endpoint":         s.URL + "/oauth2/token",
		"authorization_endpoint": s.URL + "/oauth2/authorize",
	})
}

func (s *IdentityServer) serveProofToken(w http.ResponseWriter, _ *http.Request) {
	s.proofTokenRequests.Add(1)

	s.mu.RLock()
	data := s.proofToken
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
