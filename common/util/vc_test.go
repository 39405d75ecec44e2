package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/affinityproject/affinidi-core-sdk/common/dto"
)

func TestSerializeTypes(t *testing.T) {
	assert.Nil(t, SerializeTypes(nil))
	assert.Equal(t, "VerifiableCredential", SerializeTypes([]string{"VerifiableCredential"}))
	assert.Equal(t,
		[]interface{}{"VerifiableCredential", "NameCredential"},
		SerializeTypes([]string{"VerifiableCredential", "NameCredential"}))
}

func TestAppendContext(t *testing.T) {
	const uri = "https://w3id.org/vc-revocation-list-2020/v1"
	const base = "https://www.w3.org/2018/credentials/v1"

	assert.Equal(t, []interface{}{uri}, AppendContext(nil, uri))
	assert.Equal(t, []interface{}{base, uri}, AppendContext(base, uri))
	assert.Equal(t, uri, AppendContext(uri, uri))

	appended := AppendContext([]interface{}{base}, uri)
	assert.Equal(t, []interface{}{base, uri}, appended)

	// Already present: unchanged.
	same := AppendContext([]interface{}{base, uri}, uri)
	assert.Equal(t, []interface{}{base, uri}, same)
}

func TestSerializeContexts(t *testing.T) {
	valid, err := SerializeContexts([]interface{}{
		"https://www.w3.org/2018/credentials/v1",
		JSONMap{"custom": "https://example.com/vocab#custom"},
	})
	require.NoError(t, err)
	assert.Len(t, valid, 2)

	_, err = SerializeContexts([]interface{}{""})
	assert.Error(t, err)

	_, err = SerializeContexts([]interface{}{nil})
	assert.Error(t, err)

	_, err = SerializeContexts([]interface{}{JSONMap{"@context": "nested"}})
	assert.Error(t, err)
}

func TestParseProofRequiresType(t *testing.T) {
	_, err := ParseProof(map[string]interface{}{"proofValue": "abc"})
	assert.Error(t, err)

	proof, err := ParseProof(map[string]interface{}{
		"type":               "DataIntegrityProof",
		"cryptosuite":        "ecdsa-rdfc-2019",
		"proofValue":         "abc",
		"verificationMethod": "did:elem:signer#key-1",
		"challenge":          "chal",
		"domain":             "example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "DataIntegrityProof", proof.Type)
	assert.Equal(t, "chal", proof.Challenge)
	assert.Equal(t, "example.com", proof.Domain)
}

func TestSerializeProofsSingleVsMultiple(t *testing.T) {
	one, err := ParseProof(map[string]interface{}{"type": "DataIntegrityProof"})
	require.NoError(t, err)

	single := SerializeProofs([]dto.Proof{one})
	_, isMap := single.(JSONMap)
	assert.True(t, isMap)

	multiple := SerializeProofs([]dto.Proof{one, one})
	_, isSlice := multiple.([]JSONMap)
	assert.True(t, isSlice)
}
