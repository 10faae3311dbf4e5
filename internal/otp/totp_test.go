package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The RFC 6238 SHA-1 reference secret, '12345678901234567890' in base32
const testSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func fixedDeriver(unix int64) *Deriver {
	return &Deriver{Now: func() time.Time { return time.Unix(unix, 0).UTC() }}
}

func TestDeriveReferenceVectors(t *testing.T) {
	// Unix time -> expected code, the low six digits of the RFC 6238
	// SHA-1 test vectors
	vectors := []struct {
		unix int64
		code string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"}, // leading zero preserved
		{1234567890, "005924"}, // leading zeros preserved
		{2000000000, "279037"},
		{20000000000, "353130"},
	}

	for _, v := range vectors {
		code, err := Derive(testSecret, v.unix/StepSeconds)
		require.NoError(t, err)
		assert.Equal(t, v.code, code, "unix %d", v.unix)
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	a, err := Derive(testSecret, 12345)
	require.NoError(t, err)
	b, err := Derive(testSecret, 12345)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDeriveAlwaysSixDigits(t *testing.T) {
	for step := int64(0); step < 200; step++ {
		code, err := Derive(testSecret, step)
		require.NoError(t, err)
		require.Len(t, code, Digits)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "non-digit in %q", code)
		}
	}
}

func TestDeriveRejectsBadSecret(t *testing.T) {
	_, err := Derive("not!base32!", 0)
	assert.Error(t, err)
}

func TestValidateWindow(t *testing.T) {
	d := fixedDeriver(1700000000)
	step := d.StepIndex()

	for offset := int64(-2); offset <= 2; offset++ {
		code, err := Derive(testSecret, step+offset)
		require.NoError(t, err)

		want := offset >= -1 && offset <= 1
		assert.Equal(t, want, d.Validate(testSecret, code, 1), "offset %d", offset)
	}
}

func TestValidateZeroWindow(t *testing.T) {
	d := fixedDeriver(1700000000)

	current, err := d.Current(testSecret)
	require.NoError(t, err)
	previous, err := Derive(testSecret, d.StepIndex()-1)
	require.NoError(t, err)

	assert.True(t, d.Validate(testSecret, current, 0))
	assert.False(t, d.Validate(testSecret, previous, 0))
}

func TestValidateRejectsMalformed(t *testing.T) {
	d := fixedDeriver(1700000000)
	assert.False(t, d.Validate(testSecret, "", 1))
	assert.False(t, d.Validate(testSecret, "12345", 1))
	assert.False(t, d.Validate(testSecret, "1234567", 1))
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 1*time.Second, fixedDeriver(59).Remaining())
	assert.Equal(t, 30*time.Second, fixedDeriver(60).Remaining())
	assert.Equal(t, 15*time.Second, fixedDeriver(75).Remaining())
}

func TestGenerateSecretUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		secret, err := GenerateSecret()
		require.NoError(t, err)
		require.False(t, seen[secret], "secret repeated")
		seen[secret] = true

		decoded, err := encoding.DecodeString(secret)
		require.NoError(t, err)
		assert.Len(t, decoded, SecretBytes)
	}
}

func TestGeneratedSecretDerives(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)

	code, err := Derive(secret, 42)
	require.NoError(t, err)
	assert.Len(t, code, Digits)
}
