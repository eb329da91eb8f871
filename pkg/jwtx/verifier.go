package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrUnknownKID   = errors.New("jwtx: unknown kid")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// VerifyOptions captures what a verifier expects of a token.
type VerifyOptions struct {
	// Issuer the token must carry. Empty disables the check.
	Issuer string

	// Algorithms accepted in the header. Defaults to ES256 and EdDSA.
	Algorithms []string

	// Leeway tolerated on exp/nbf/iat.
	Leeway time.Duration

	// Now overrides the clock used for time-based claims.
	Now func() time.Time
}

// Verifier checks signature, algorithm, issuer and expiry against a KeySet.
// It never touches storage.
type Verifier struct {
	keys   *KeySet
	parser *jwt.Parser
}

// NewVerifier returns a verifier backed by keys.
func NewVerifier(keys *KeySet, opts VerifyOptions) *Verifier {
	algs := opts.Algorithms
	if len(algs) == 0 {
		algs = []string{AlgorithmES256, AlgorithmEdDSA}
	}

	popts := []jwt.ParserOption{
		jwt.WithValidMethods(algs),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(opts.Leeway),
	}
	if opts.Issuer != "" {
		popts = append(popts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Now != nil {
		popts = append(popts, jwt.WithTimeFunc(opts.Now))
	}

	return &Verifier{keys: keys, parser: jwt.NewParser(popts...)}
}

// Verify parses raw and returns its claims. Failures are reported as one of
// the package's sentinel errors.
func (v *Verifier) Verify(raw string) (Claims, error) {
	var claims Claims
	token, err := v.parser.ParseWithClaims(raw, &claims, v.keyFunc)
	if err != nil {
		return Claims{}, classify(err)
	}
	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidClaim
	}
	return claims, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid", ErrUnknownKID)
	}
	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
	}
	return pub, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, ErrUnknownKID):
		return ErrUnknownKID
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrNotYetValid
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
