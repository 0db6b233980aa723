package validator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sap/cloud-security-client-go/config"
	"github.com/sap/cloud-security-client-go/token"
)

// AudienceValidator checks that a token was issued for one of the trusted
// client ids or app ids.
//
// The audiences of a token are taken from aud, with namespaces removed
// ("app!t1.read" becomes "app!t1"), plus the client id if azp is set. For
// XSUAA tokens without aud they are derived from the scopes. A token issued
// for a broker clone ("sb-clone|app!b1") is accepted when the trusted id of
// the broker ("app!b1") contains "!b".
type AudienceValidator struct {
	service          config.Service
	trustedClientIDs []string
	logger           Logger
}

// NewAudienceValidator creates an AudienceValidator for tokens of service.
// Blank and duplicate ids are ignored.
func NewAudienceValidator(service config.Service, trustedClientIDs ...string) (*AudienceValidator, error) {
	v := &AudienceValidator{service: service, logger: nopLogger{}}
	for _, id := range trustedClientIDs {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(v.trustedClientIDs, id) {
			v.trustedClientIDs = append(v.trustedClientIDs, id)
		}
	}

	if len(v.trustedClientIDs) == 0 {
		return nil, fmt.Errorf("%w: audience validator requires a client id", ErrInvalidArgument)
	}

	return v, nil
}

// TrustedClientIDs returns the configured ids in configuration order.
func (v *AudienceValidator) TrustedClientIDs() []string {
	return slices.Clone(v.trustedClientIDs)
}

// Validate implements Validator.
func (v *AudienceValidator) Validate(_ context.Context, t *token.Token) Result {
	audiences := DerivedAudiences(t, v.service)
	v.logger.Debug("derived audiences from token", "audiences", audiences)

	for _, trusted := range v.trustedClientIDs {
		if slices.Contains(audiences, trusted) {
			return Valid()
		}
	}

	for _, trusted := range v.trustedClientIDs {
		if !strings.Contains(trusted, "!b") {
			continue
		}
		for _, audience := range audiences {
			if strings.HasSuffix(audience, "|"+trusted) {
				return Valid()
			}
		}
	}

	return Invalid("Jwt token with audience %v is not issued for these clientIds: %v.", t.Audiences(), v.trustedClientIDs)
}

// DerivedAudiences returns the audiences a token counts as issued for.
func DerivedAudiences(t *token.Token, service config.Service) []string {
	var audiences []string
	add := func(audience string) {
		if audience != "" && !slices.Contains(audiences, audience) {
			audiences = append(audiences, audience)
		}
	}

	tokenAudiences := t.Audiences()
	for _, audience := range tokenAudiences {
		add(stripNamespace(audience))
	}

	if t.HasClaim(token.ClaimAuthorizedParty) {
		add(t.ClientID())
	}

	if service == config.ServiceXSUAA && len(tokenAudiences) == 0 {
		for _, scope := range t.Scopes() {
			if strings.Contains(scope, ".") {
				add(stripNamespace(scope))
			}
		}
	}

	return audiences
}

func stripNamespace(audience string) string {
	if idx := strings.IndexByte(audience, '.'); idx >= 0 {
		return strings.TrimSpace(audience[:idx])
	}

	return audience
}

// XSUAAAudienceValidator implements the audience check of older XSUAA
// clients. A token is accepted if its cid equals a configured client id, if
// it was issued for a clone of a configured broker app id, or if one of its
// audiences equals a configured app id.
type XSUAAAudienceValidator struct {
	appIDs    []string
	clientIDs map[string]string
}

// NewXSUAAAudienceValidator creates an XSUAAAudienceValidator for the app id
// and client id of one XSUAA service instance.
func NewXSUAAAudienceValidator(appID, clientID string) (*XSUAAAudienceValidator, error) {
	v := &XSUAAAudienceValidator{clientIDs: map[string]string{}}
	if err := v.add(appID, clientID); err != nil {
		return nil, err
	}

	return v, nil
}

// WithServiceInstance returns a copy of v additionally trusting the app id
// and client id of another XSUAA service instance.
func (v *XSUAAAudienceValidator) WithServiceInstance(appID, clientID string) (*XSUAAAudienceValidator, error) {
	clone := &XSUAAAudienceValidator{
		appIDs:    slices.Clone(v.appIDs),
		clientIDs: make(map[string]string, len(v.clientIDs)+1),
	}
	for k, val := range v.clientIDs {
		clone.clientIDs[k] = val
	}

	if err := clone.add(appID, clientID); err != nil {
		return nil, err
	}

	return clone, nil
}

func (v *XSUAAAudienceValidator) add(appID, clientID string) error {
	if strings.TrimSpace(appID) == "" || strings.TrimSpace(clientID) == "" {
		return fmt.Errorf("%w: app id and client id must not be empty", ErrInvalidArgument)
	}

	if _, ok := v.clientIDs[appID]; !ok {
		v.appIDs = append(v.appIDs, appID)
		v.clientIDs[appID] = clientID
	}

	return nil
}

// Validate implements Validator.
func (v *XSUAAAudienceValidator) Validate(_ context.Context, t *token.Token) Result {
	tokenClientID := t.ClaimAsString(token.ClaimClientID)
	if tokenClientID == "" {
		return Invalid("Jwt token must contain 'cid' (client_id).")
	}

	audiences := xsuaaAllowedAudiences(t)
	for _, appID := range v.appIDs {
		clientID := v.clientIDs[appID]
		if clientID == tokenClientID {
			return Valid()
		}
		if strings.Contains(appID, "!b") && strings.HasSuffix(tokenClientID, "|"+appID) {
			return Valid()
		}
		if slices.Contains(audiences, appID) {
			return Valid()
		}
	}

	return Invalid("Jwt token audience matches none of these: %v.", v.appIDs)
}

func xsuaaAllowedAudiences(t *token.Token) []string {
	var audiences []string
	add := func(audience string) {
		if audience != "" && !slices.Contains(audiences, audience) {
			audiences = append(audiences, audience)
		}
	}

	for _, audience := range t.Audiences() {
		add(stripNamespace(audience))
	}

	if len(audiences) == 0 {
		for _, scope := range t.Scopes() {
			if strings.Contains(scope, ".") {
				add(stripNamespace(scope))
			}
		}
	}

	return audiences
}
