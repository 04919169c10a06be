package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	blob, err := EncryptKey(testKeyHex, "hunter2")
	require.NoError(t, err)

	got, err := DecryptKey(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, testKeyHex, got)
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := EncryptKey(testKeyHex, "hunter2")
	require.NoError(t, err)

	_, err = DecryptKey(blob, "wrong")
	assert.Error(t, err)
}

func TestEncryptKeyValidation(t *testing.T) {
	_, err := EncryptKey(testKeyHex, "")
	assert.Error(t, err)

	_, err = EncryptKey("zz", "hunter2")
	assert.Error(t, err)

	// Too short for a secp256k1 key.
	_, err = EncryptKey("abcd", "hunter2")
	assert.Error(t, err)
}

func TestEncryptKeyAccepts0xPrefix(t *testing.T) {
	blob, err := EncryptKey("0x"+testKeyHex, "hunter2")
	require.NoError(t, err)

	got, err := DecryptKey(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, testKeyHex, got)
}

func TestDecryptKeyBadBlob(t *testing.T) {
	_, err := DecryptKey([]byte("not json"), "hunter2")
	assert.Error(t, err)

	_, err = DecryptKey([]byte(`{"version":99}`), "hunter2")
	assert.Error(t, err)
}

func TestLoadKeyRawTakesPrecedence(t *testing.T) {
	got, err := LoadKey(KeyConfig{
		RawPrivateKey:    "0x" + testKeyHex,
		EncryptedKeyPath: "/does/not/exist",
	})
	require.NoError(t, err)
	assert.Equal(t, testKeyHex, got)

	_, err = LoadKey(KeyConfig{RawPrivateKey: "not hex"})
	assert.Error(t, err)
}

func TestLoadKeyFromEncryptedFile(t *testing.T) {
	blob, err := EncryptKey(testKeyHex, "hunter2")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "signer.json")
	require.NoError(t, os.WriteFile(path, blob, 0o600))

	got, err := LoadKey(KeyConfig{EncryptedKeyPath: path, KeyPassword: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, testKeyHex, got)

	_, err = LoadKey(KeyConfig{EncryptedKeyPath: path, KeyPassword: "wrong"})
	assert.Error(t, err)
}

func TestLoadKeyNoSource(t *testing.T) {
	_, err := LoadKey(KeyConfig{})
	assert.Error(t, err)
}
