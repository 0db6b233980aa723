package token

// Registered and identity service specific claim names.
const (
	ClaimIssuer          = "iss"
	ClaimIASIssuer       = "ias_iss"
	ClaimSubject         = "sub"
	ClaimAudience        = "aud"
	ClaimAuthorizedParty = "azp"
	ClaimClientID        = "cid"
	ClaimExpiration      = "exp"
	ClaimNotBefore       = "nbf"
	ClaimIssuedAt        = "iat"
	ClaimZoneID          = "zid"
	ClaimAppTID          = "app_tid"
	ClaimScope           = "scope"
	ClaimIASAPIs         = "ias_apis"
	ClaimCnf             = "cnf"

	// CnfX5tS256 is the member of the cnf claim carrying the SHA-256
	// thumbprint of the certificate the token is bound to.
	CnfX5tS256 = "x5t#S256"
)

// JOSE header parameter names.
const (
	HeaderAlgorithm = "alg"
	HeaderKeyID     = "kid"
	HeaderJKU       = "jku"
	HeaderType      = "typ"
)
