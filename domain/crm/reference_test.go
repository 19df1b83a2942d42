package crm

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReference_RawKey(t *testing.T) {
	id := uuid.New().String()

	key, err := DecodeReference(id, RefCustomer)
	require.NoError(t, err)
	assert.Equal(t, id, key)
}

func TestDecodeReference_EncodedToken(t *testing.T) {
	id := uuid.New().String()
	token := EncodeReference(RefProduct, id)

	key, err := DecodeReference(token, RefProduct)
	require.NoError(t, err)
	assert.Equal(t, id, key)
}

func TestDecodeReference_PlainComposite(t *testing.T) {
	key, err := DecodeReference("Order:42", RefOrder)
	require.NoError(t, err)
	assert.Equal(t, "42", key)
}

func TestDecodeReference_WrongKind(t *testing.T) {
	token := EncodeReference(RefProduct, "p1")

	_, err := DecodeReference(token, RefCustomer)
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = DecodeReference("Product:p1", RefCustomer)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestDecodeReference_EmptyKey(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("Customer:"))

	_, err := DecodeReference(token, RefCustomer)
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = DecodeReference("", RefCustomer)
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = DecodeReference("   ", RefCustomer)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestDecodeReference_Base64WithoutSeparatorIsRawKey(t *testing.T) {
	// "aGVsbG8=" decodes to "hello", which carries no kind tag.
	key, err := DecodeReference("aGVsbG8=", RefCustomer)
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", key)
}

func TestEncodeReference(t *testing.T) {
	assert.Equal(t, "Q3VzdG9tZXI6MQ==", EncodeReference(RefCustomer, "1"))
}
