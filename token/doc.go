/*
Package token decodes compact serialized JWTs issued by XSUAA and IAS.

A Token is created per request, exposes typed accessors for header parameters
and claims, and is never mutated after Parse returns. Signature verification
is not performed here; see the validator package.

	tok, err := token.Parse(raw)
	if err != nil {
	    // not a JWT at all
	}

	exp, ok := tok.Expiration()
	clientID := tok.ClientID()
*/
package token
