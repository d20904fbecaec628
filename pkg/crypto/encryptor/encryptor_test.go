package encryptor

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	plaintext := []byte("attack at dawn")
	aad := []byte("set-1")

	ct, err := Seal(rand.Reader, key, plaintext, aad)
	require.NoError(t, err)
	assert.NotContains(t, string(ct), "attack")

	pt, err := Open(key, ct, aad)
	require.NoError(t, err)
	assert.Equal(t, plaintext, pt)
}

func TestOpenRejectsTampering(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	ct, err := Seal(rand.Reader, key, []byte("payload"), []byte("set-1"))
	require.NoError(t, err)

	_, err = Open(key, ct, []byte("set-2"))
	require.Error(t, err, "associated data is bound")

	flipped := append([]byte(nil), ct...)
	flipped[len(flipped)-1] ^= 1
	_, err = Open(key, flipped, []byte("set-1"))
	require.Error(t, err)

	other := bytes.Repeat([]byte{0x43}, KeySize)
	_, err = Open(other, ct, []byte("set-1"))
	require.Error(t, err)

	_, err = Open(key, ct[:10], []byte("set-1"))
	require.ErrorIs(t, err, ErrShortCiphertext)
}

func TestKeyLength(t *testing.T) {
	_, err := Seal(rand.Reader, make([]byte, 16), []byte("x"), nil)
	require.Error(t, err)
	_, err = Open(make([]byte, 31), make([]byte, 64), nil)
	require.Error(t, err)
}
