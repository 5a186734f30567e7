package confirmation

import "errors"

var (
	// ErrOutOfTokens means a confirmation could not reserve a token. It stays
	// pending until a refill succeeds.
	ErrOutOfTokens = errors.New("out of unblinded tokens")
	// ErrIssuersUnavailable means no valid issuers have been fetched yet.
	ErrIssuersUnavailable = errors.New("issuers unavailable")
	// ErrUnknownIssuer is a response signed with a key not in the current
	// issuers.
	ErrUnknownIssuer = errors.New("unknown issuer public key")
)
