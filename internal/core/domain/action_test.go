package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	env, act, err := ParseAction([]byte(`{"type":"rotate-stream","id":7,"url":"https://example.com/s","rotation":180}`))
	require.NoError(t, err)
	assert.Equal(t, "rotate-stream", env.MsgType)
	assert.Equal(t, json.RawMessage("7"), env.ID)

	rotate, ok := act.(*RotateStream)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/s", rotate.URL)
	assert.Equal(t, 180, rotate.Rotation)
}

func TestParseActionNullableViewIdx(t *testing.T) {
	_, act, err := ParseAction([]byte(`{"type":"set-listening-view","viewIdx":null}`))
	require.NoError(t, err)
	listen := act.(*SetListeningView)
	assert.Nil(t, listen.ViewIdx)

	_, act, err = ParseAction([]byte(`{"type":"set-listening-view","viewIdx":4}`))
	require.NoError(t, err)
	listen = act.(*SetListeningView)
	require.NotNil(t, listen.ViewIdx)
	assert.Equal(t, 4, *listen.ViewIdx)
}

func TestParseActionUnknownType(t *testing.T) {
	env, act, err := ParseAction([]byte(`{"type":"drop-tables","id":"abc"}`))
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Nil(t, act)
	// Envelope still populated so the error response can be correlated.
	assert.Equal(t, "drop-tables", env.MsgType)
	assert.Equal(t, json.RawMessage(`"abc"`), env.ID)
}

func TestParseActionMalformed(t *testing.T) {
	_, _, err := ParseAction([]byte(`{not json`))
	assert.Error(t, err)
}

func TestParseActionCustomStreamPayload(t *testing.T) {
	raw := []byte(`{"type":"update-custom-stream","url":"https://example.com/s","data":{"label":"City Hall","kind":"video"}}`)
	_, act, err := ParseAction(raw)
	require.NoError(t, err)

	update := act.(*UpdateCustomStream)
	assert.Equal(t, "https://example.com/s", update.URL)
	assert.Equal(t, "City Hall", update.Data.Label)
}

func TestActionTypeMatchesWireName(t *testing.T) {
	for _, raw := range []string{
		`{"type":"set-listening-view"}`,
		`{"type":"set-view-background-listening"}`,
		`{"type":"set-view-blurred"}`,
		`{"type":"reload-view"}`,
		`{"type":"rotate-stream"}`,
		`{"type":"browse"}`,
		`{"type":"dev-tools"}`,
		`{"type":"update-custom-stream"}`,
		`{"type":"delete-custom-stream"}`,
		`{"type":"set-stream-censored"}`,
		`{"type":"set-stream-running"}`,
		`{"type":"create-invite"}`,
		`{"type":"delete-token"}`,
	} {
		env, act, err := ParseAction([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, env.MsgType, act.Type())
	}
}
