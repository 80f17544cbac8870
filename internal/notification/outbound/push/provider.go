package push

import (
	"github.com/oks-citadel/apply-notify/internal/notification/entity"
)

// Canonical failure vocabulary. Providers normalize their SDK errors onto
// these prefixes so the dispatch engine can classify outcomes by substring
// without knowing provider internals.
const (
	ReasonUnregistered   = "unregistered"
	ReasonInvalidToken   = "invalid-registration-token"
	ReasonNotFound       = "not-found"
	ReasonNotInitialized = "not initialized"
)

func failAll(tokens []string, reason string) []entity.ProviderOutcome {
	outs := make([]entity.ProviderOutcome, 0, len(tokens))
	for _, t := range tokens {
		outs = append(outs, entity.ProviderOutcome{Token: t, Error: reason})
	}
	return outs
}
