package cryptox

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

var ErrPasswordMismatch = errors.New("password does not match")

// HashParams tunes the Argon2id cost.
type HashParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultHashParams follows the OWASP minimum for Argon2id.
var DefaultHashParams = HashParams{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
}

const (
	keyLength  = 32
	saltLength = 16
)

// HasherConfig configures a Hasher. Zero values fall back to defaults.
type HasherConfig struct {
	Params HashParams
	Pepper string

	// MaxConcurrent bounds simultaneous hash computations. Defaults to GOMAXPROCS.
	MaxConcurrent int

	// Rand is the salt source. Defaults to crypto/rand.
	Rand io.Reader

	// Observe, if set, receives the duration of every hash computation.
	Observe func(time.Duration)
}

// Hasher produces and checks PHC-format Argon2id hashes. Hashing is CPU and
// memory heavy, so callers queue on a weighted semaphore instead of all
// running at once; a request whose context ends while queued gives up.
type Hasher struct {
	params  HashParams
	pepper  string
	rand    io.Reader
	sem     *semaphore.Weighted
	observe func(time.Duration)
}

func NewHasher(cfg HasherConfig) *Hasher {
	if cfg.Params.Memory == 0 {
		cfg.Params.Memory = DefaultHashParams.Memory
	}
	if cfg.Params.Iterations == 0 {
		cfg.Params.Iterations = DefaultHashParams.Iterations
	}
	if cfg.Params.Parallelism == 0 {
		cfg.Params.Parallelism = DefaultHashParams.Parallelism
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = runtime.GOMAXPROCS(0)
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	return &Hasher{
		params:  cfg.Params,
		pepper:  cfg.Pepper,
		rand:    cfg.Rand,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		observe: cfg.Observe,
	}
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate salt: %w", err)
	}

	sum, err := h.derive(ctx, password, salt, h.params, keyLength)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify compares a plaintext password against a PHC-style Argon2id hash in
// constant time. It returns ErrPasswordMismatch when the password is wrong.
func (h *Hasher) Verify(ctx context.Context, password, encodedHash string) error {
	params, salt, expected, err := decodeHash(encodedHash)
	if err != nil {
		return err
	}

	computed, err := h.derive(ctx, password, salt, params, uint32(len(expected))) // #nosec G115 - hash length is 32
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// NeedsRehash reports whether encodedHash was produced with other parameters.
func (h *Hasher) NeedsRehash(encodedHash string) bool {
	params, _, _, err := decodeHash(encodedHash)
	return err != nil || params != h.params
}

func (h *Hasher) derive(ctx context.Context, password string, salt []byte, p HashParams, length uint32) ([]byte, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("cryptox: waiting for hash slot: %w", err)
	}
	defer h.sem.Release(1)

	start := time.Now()
	sum := argon2.IDKey([]byte(password+h.pepper), salt, p.Iterations, p.Memory, p.Parallelism, length)
	if h.observe != nil {
		h.observe(time.Since(start))
	}
	return sum, nil
}

// decodeHash parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func decodeHash(encodedHash string) (HashParams, []byte, []byte, error) {
	var p HashParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return p, nil, nil, errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, nil, nil, errors.New("invalid hash format: wrong version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}
	if len(sum) == 0 {
		return p, nil, nil, errors.New("invalid hash format: empty hash")
	}

	return p, salt, sum, nil
}
