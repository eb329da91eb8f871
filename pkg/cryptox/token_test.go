package cryptox

import (
	"bytes"
	"crypto/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantLen int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
		{"512-bit token", TokenSize512, 86},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.wantLen)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestGenerateTokenFrom_ShortReader(t *testing.T) {
	_, err := GenerateTokenFrom(bytes.NewReader([]byte{1, 2, 3}), TokenSize256)
	require.Error(t, err)
}

func TestGenerateTokenFrom_Deterministic(t *testing.T) {
	src := bytes.Repeat([]byte{0xAB}, 64)
	a, err := GenerateTokenFrom(bytes.NewReader(src), 32)
	require.NoError(t, err)
	b, err := GenerateTokenFrom(bytes.NewReader(src), 32)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestMustGenerateToken_Panics(t *testing.T) {
	require.NotEmpty(t, MustGenerateToken(TokenSize256))
	require.Panics(t, func() {
		MustGenerateToken(0)
	})
}

func TestFingerprintToken(t *testing.T) {
	fp1a := FingerprintToken("test-token-1")
	fp1b := FingerprintToken("test-token-1")
	fp2 := FingerprintToken("test-token-2")

	require.Equal(t, fp1a, fp1b, "fingerprint should be deterministic")
	require.NotEqual(t, fp1a, fp2)
	require.Len(t, fp1a, 43, "SHA-256 base64url should be 43 chars")
}

func TestGenerateBackupCode(t *testing.T) {
	code, err := GenerateBackupCode(bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef}))
	require.NoError(t, err)
	require.Equal(t, "DEADBEEF", code)

	re := regexp.MustCompile(`^[0-9A-F]{8}$`)
	for range 20 {
		code, err := GenerateBackupCode(rand.Reader)
		require.NoError(t, err)
		require.Regexp(t, re, code)
	}
}

func TestFingerprintBackupCode_CaseInsensitive(t *testing.T) {
	require.Equal(t, FingerprintBackupCode("DEADBEEF"), FingerprintBackupCode("deadbeef"))
	require.Equal(t, FingerprintBackupCode("DEADBEEF"), FingerprintBackupCode(" DeadBeef "))
	require.Equal(t, FingerprintToken("DEADBEEF"), FingerprintBackupCode(strings.ToLower("DEADBEEF")))
}
