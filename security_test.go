package assetcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashKeyIsStableAndDistinct(t *testing.T) {
	sec, err := NewSecurity("")
	require.NoError(t, err)

	h1 := sec.hashKey("https://example.com/a")
	h2 := sec.hashKey("https://example.com/a")
	h3 := sec.hashKey("https://example.com/b")

	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)
	require.Len(t, h1, 64)
}

func TestNewSecurityEmptyPassphraseLeavesDataUnencrypted(t *testing.T) {
	sec, err := NewSecurity("")
	require.NoError(t, err)
	require.False(t, sec.Encrypted())

	plain := []byte("plaintext payload")
	out, err := sec.encrypt(plain)
	require.NoError(t, err)
	require.Equal(t, plain, out)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sec, err := NewSecurity("correct-horse-battery-staple")
	require.NoError(t, err)
	require.True(t, sec.Encrypted())

	plain := []byte("Hello, World! This is a cached response body.")
	ciphertext, err := sec.encrypt(plain)
	require.NoError(t, err)
	require.NotEqual(t, plain, ciphertext)

	decrypted, err := sec.decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, plain, decrypted)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	sec, err := NewSecurity("pass")
	require.NoError(t, err)

	_, err = sec.decrypt([]byte("short"))
	require.Error(t, err)
}

func TestEncryptionKeyedByPassphrase(t *testing.T) {
	secA, err := NewSecurity("passphrase-a")
	require.NoError(t, err)
	secB, err := NewSecurity("passphrase-b")
	require.NoError(t, err)

	ciphertext, err := secA.encrypt([]byte("data"))
	require.NoError(t, err)

	_, err = secB.decrypt(ciphertext)
	require.Error(t, err)
}
