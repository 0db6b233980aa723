package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sap/cloud-security-client-go/token"
)

// ValidationListener is notified about the outcome of every validation done
// by a Chain.
type ValidationListener interface {
	OnValidationSuccess()
	OnValidationError(result Result)
}

// Chain combines validators. It is immutable and safe for concurrent use.
//
// All validators run, in order, even after one of them failed. The token is
// valid only if every validator accepts it. The description of an invalid
// Result starts with the first failure; further failures follow, separated
// by "; ".
type Chain struct {
	validators []Validator
	listeners  []ValidationListener
	logger     Logger
}

// NewChain creates a Chain of validators.
func NewChain(validators []Validator, listeners []ValidationListener, logger Logger) *Chain {
	return &Chain{
		validators: append([]Validator(nil), validators...),
		listeners:  append([]ValidationListener(nil), listeners...),
		logger:     loggerOrNop(logger),
	}
}

// Validate implements Validator.
func (c *Chain) Validate(ctx context.Context, t *token.Token) Result {
	if len(c.validators) == 0 {
		return c.notify(Invalid("CombiningValidator must contain at least one validator!"))
	}

	var failures []string
	for _, v := range c.validators {
		result := v.Validate(ctx, t)
		if result.IsValid() {
			continue
		}

		c.logger.Debug("validator rejected token",
			"validator", fmt.Sprintf("%T", v),
			"reason", result.ErrorDescription())
		failures = append(failures, result.ErrorDescription())
	}

	if len(failures) != 0 {
		return c.notify(Invalid("%s", strings.Join(failures, "; ")))
	}

	return c.notify(Valid())
}

// Validators returns the validators of the chain in order.
func (c *Chain) Validators() []Validator {
	return append([]Validator(nil), c.validators...)
}

func (c *Chain) notify(result Result) Result {
	for _, listener := range c.listeners {
		if result.IsValid() {
			listener.OnValidationSuccess()
		} else {
			listener.OnValidationError(result)
		}
	}

	return result
}

func (c *Chain) String() string {
	names := make([]string, 0, len(c.validators))
	for _, v := range c.validators {
		names = append(names, fmt.Sprintf("%T", v))
	}

	return strings.Join(names, ",")
}
