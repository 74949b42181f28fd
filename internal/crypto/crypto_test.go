package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()
	s, err := NewSealer(bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)
	return s
}

func TestSealOpen(t *testing.T) {
	s := newTestSealer(t)

	sealed, err := s.Seal("someone@example.com")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "example")

	again, err := s.Seal("someone@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", plain)

	empty, err := s.Seal("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOpenRejectsTampering(t *testing.T) {
	s := newTestSealer(t)

	_, err := s.Open("AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = s.Open("not base64!")
	assert.Error(t, err)

	other, err := NewSealer(bytes.Repeat([]byte{9}, 32), bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)
	sealed, err := other.Seal("x@y.z")
	require.NoError(t, err)
	_, err = s.Open(sealed)
	assert.Error(t, err)
}

func TestBlindIndex(t *testing.T) {
	s := newTestSealer(t)
	assert.Equal(t, s.BlindIndex("a@b.c"), s.BlindIndex("a@b.c"))
	assert.NotEqual(t, s.BlindIndex("a@b.c"), s.BlindIndex("a@b.d"))
	assert.Empty(t, s.BlindIndex(""))
}

func TestNewSealerKeyLengths(t *testing.T) {
	_, err := NewSealer(make([]byte, 16), make([]byte, 32))
	assert.Error(t, err)
	_, err = NewSealer(make([]byte, 32), make([]byte, 8))
	assert.Error(t, err)
}
