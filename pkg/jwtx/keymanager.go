package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
)

// KeyIDPrefix prefixes every generated kid.
const KeyIDPrefix = "vendorauth-"

var ErrLastSigner = errors.New("jwtx: cannot retire the last signing key")

// KeyManager owns the signing keys of this instance and the KeySet used to
// verify and publish them. Signing picks one active key at random.
type KeyManager struct {
	keys      *KeySet
	verifier  *Verifier
	algorithm string

	mu      sync.RWMutex
	signers []Signer
}

// KeyManagerOptions configures a KeyManager.
type KeyManagerOptions struct {
	// Algorithm for new keys: "ES256" or "EdDSA".
	Algorithm string

	// Issuer is stamped into and required of every token.
	Issuer string

	// NumKeys is the number of active signing keys. Defaults to 3, capped at 10.
	NumKeys int

	// Leeway tolerated on time-based claims.
	Leeway time.Duration

	// Now overrides the verification clock.
	Now func() time.Time
}

func (o *KeyManagerOptions) normalize() error {
	if o.Issuer == "" {
		return errors.New("jwtx: Issuer is required")
	}
	switch o.Algorithm {
	case AlgorithmES256, AlgorithmEdDSA:
	default:
		return fmt.Errorf("jwtx: unsupported algorithm %q (supported: ES256, EdDSA)", o.Algorithm)
	}
	if o.NumKeys <= 0 {
		o.NumKeys = 3
	}
	if o.NumKeys > 10 {
		o.NumKeys = 10
	}
	return nil
}

func newKeyManager(opts KeyManagerOptions, keys *KeySet, signers []Signer) *KeyManager {
	return &KeyManager{
		keys: keys,
		verifier: NewVerifier(keys, VerifyOptions{
			Issuer: opts.Issuer,
			Leeway: opts.Leeway,
			Now:    opts.Now,
		}),
		algorithm: opts.Algorithm,
		signers:   signers,
	}
}

// NewEphemeralKeyManager generates NumKeys keys that live only in memory.
// Every token becomes invalid when the process restarts.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	keys := NewKeySet()
	signers := make([]Signer, 0, opts.NumKeys)
	for i := range opts.NumKeys {
		_, signer, err := GenerateSigner(opts.Algorithm)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}
		if err := keys.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d to keyset: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	return newKeyManager(opts, keys, signers), nil
}

// GenerateSigner creates a fresh key pair for alg under a random kid and
// returns the PKCS8 PEM alongside the signer.
func GenerateSigner(alg string) ([]byte, Signer, error) {
	kid, err := NewKeyID()
	if err != nil {
		return nil, nil, err
	}

	var pemData []byte
	switch alg {
	case AlgorithmES256:
		pemData, err = cryptox.GenerateES256Key()
	case AlgorithmEdDSA:
		pemData, err = cryptox.GenerateEd25519Key()
	default:
		return nil, nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
	if err != nil {
		return nil, nil, err
	}

	signer, err := NewSigner(alg, kid, pemData)
	if err != nil {
		return nil, nil, err
	}
	return pemData, signer, nil
}

// NewKeyID returns a random kid of the form "vendorauth-<128-bit token>".
func NewKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to generate key ID: %w", err)
	}
	return KeyIDPrefix + token, nil
}

// Algorithm returns the algorithm used for new keys.
func (km *KeyManager) Algorithm() string { return km.algorithm }

// KeySet returns the verification keys, including retired ones.
func (km *KeyManager) KeySet() *KeySet { return km.keys }

// Verifier returns the verifier bound to this manager's KeySet.
func (km *KeyManager) Verifier() *Verifier { return km.verifier }

// IsReady reports whether the manager can sign.
func (km *KeyManager) IsReady() bool {
	return km.NumSigners() > 0 && km.keys.IsReady()
}

// Signer returns a randomly selected active signer, or nil if none remain.
func (km *KeyManager) Signer() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

// Sign signs claims with one of the active keys.
func (km *KeyManager) Sign(claims Claims) (string, error) {
	s := km.Signer()
	if s == nil {
		return "", errors.New("jwtx: no active signing key")
	}
	return s.Sign(claims)
}

// Verify checks raw against every known key, active or retired.
func (km *KeyManager) Verify(raw string) (Claims, error) {
	return km.verifier.Verify(raw)
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// Signers returns a copy of the active signers.
func (km *KeyManager) Signers() []Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()
	out := make([]Signer, len(km.signers))
	copy(out, km.signers)
	return out
}

// AddSigner makes signer active and publishes its public key.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return errors.New("jwtx: signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.keys.AddSigner(signer); err != nil {
		return fmt.Errorf("jwtx: failed to add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, signer)
	return nil
}

// RetireSigner stops kid from signing. Its public key stays in the KeySet
// until Forget is called, so outstanding tokens keep verifying.
func (km *KeyManager) RetireSigner(kid string) error {
	km.mu.Lock()
	defer km.mu.Unlock()

	i := -1
	for j, s := range km.signers {
		if s.KID() == kid {
			i = j
			break
		}
	}
	if i < 0 {
		return fmt.Errorf("%w %q", ErrUnknownKID, kid)
	}
	if len(km.signers) == 1 {
		return ErrLastSigner
	}

	km.signers = append(km.signers[:i:i], km.signers[i+1:]...)
	return nil
}

// Forget removes kid from verification entirely. Active signers cannot be
// forgotten.
func (km *KeyManager) Forget(kid string) {
	km.mu.Lock()
	defer km.mu.Unlock()
	for _, s := range km.signers {
		if s.KID() == kid {
			return
		}
	}
	km.keys.Remove(kid)
}
