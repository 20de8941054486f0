package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	env, err := NewEnvelope(HeaderLogin, AuthPayload{Username: "alice", Password: "Passw0rdOk"})
	require.NoError(t, err)

	data, err := Encode(env)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, HeaderLogin, got.Header)

	var auth AuthPayload
	require.NoError(t, got.DecodePayload(&auth))
	assert.Equal(t, "alice", auth.Username)
	assert.Equal(t, "Passw0rdOk", auth.Password)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json at all"))
	assert.Error(t, err)
}

func TestDecode_RejectsMissingHeader(t *testing.T) {
	_, err := Decode([]byte(`{"payload": {"choice": 1}}`))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestNewEnvelope_NilPayloadOmitted(t *testing.T) {
	env, err := NewEnvelope(HeaderBye, nil)
	require.NoError(t, err)

	data, err := Encode(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"header":"BYE"}`, string(data))
}

func TestDecodePayload_MissingPayload(t *testing.T) {
	env, err := NewEnvelope(HeaderInboxChoice, nil)
	require.NoError(t, err)

	var choice ChoicePayload
	assert.ErrorIs(t, env.DecodePayload(&choice), ErrMissingPayload)
}

func TestError_CarriesMessage(t *testing.T) {
	env := Error("something broke")
	assert.Equal(t, HeaderError, env.Header)

	var p ErrorPayload
	require.NoError(t, env.DecodePayload(&p))
	assert.Equal(t, "something broke", p.ErrorMessage)
}

func TestCurrentTimestamp_IsRFC3339UTC(t *testing.T) {
	ts := CurrentTimestamp()
	parsed, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())
}
