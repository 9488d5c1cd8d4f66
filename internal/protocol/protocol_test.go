package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		body string
	}{
		{"AUTH:default123", KindAuth, "default123"},
		{"AUTH:  secret \n", KindAuth, "secret"},
		{"KEY:A", KindKey, "A"},
		{"KEY: MOUSE_LEFT ", KindKey, "MOUSE_LEFT"},
		{`STATE:{"keys":[]}`, KindState, `{"keys":[]}`},
		{"auth:lower", KindUnknown, ""},
		{"HELLO", KindUnknown, ""},
		{"", KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			msg := Classify(tt.raw)
			require.Equal(t, tt.kind, msg.Kind)
			require.Equal(t, tt.body, msg.Body)
			require.Equal(t, tt.raw, msg.Raw)
		})
	}
}

func TestParseState(t *testing.T) {
	p, err := ParseState(`{"keys":["A","B"],"mouse":"MOUSE_LEFT","scroll":-2}`)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, p.Keys)
	require.NotNil(t, p.Mouse)
	require.Equal(t, "MOUSE_LEFT", *p.Mouse)
	require.NotNil(t, p.Scroll)
	require.Equal(t, -2, *p.Scroll)

	p, err = ParseState(`{"keys":["A"],"mouse":null,"scroll":null}`)
	require.NoError(t, err)
	require.Nil(t, p.Mouse)
	require.Nil(t, p.Scroll)

	p, err = ParseState(`{}`)
	require.NoError(t, err)
	require.Empty(t, p.Keys)
}

func TestParseStateInvalid(t *testing.T) {
	for _, body := range []string{
		`{not json}`,
		``,
		`null`,
		`["A"]`,
		`{"keys":"A"}`,
		`{"keys":[1,2]}`,
		`{"scroll":"fast"}`,
	} {
		_, err := ParseState(body)
		require.ErrorIs(t, err, ErrInvalidState, body)
	}
}

func TestFrames(t *testing.T) {
	require.Equal(t, "AUTH:pw", Auth("pw"))
	require.Equal(t, "KEY:ENTER", Key("ENTER"))

	scroll := 1
	frame, err := State(StatePayload{Keys: []string{"A"}, Scroll: &scroll})
	require.NoError(t, err)
	require.Equal(t, `STATE:{"keys":["A"],"mouse":null,"scroll":1}`, frame)

	msg := Classify(frame)
	require.Equal(t, KindState, msg.Kind)
	p, err := ParseState(msg.Body)
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, p.Keys)

	require.Equal(t, "Error processing state: boom", ProcessingError("boom"))
}
