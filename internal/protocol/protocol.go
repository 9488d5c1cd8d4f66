// Package protocol defines the text frames exchanged with the remote client.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Client frame prefixes
const (
	PrefixAuth  = "AUTH:"
	PrefixKey   = "KEY:"
	PrefixState = "STATE:"
)

// Server replies
const (
	ReplyAuthSuccess  = "AUTH_SUCCESS"
	ReplyAuthFailed   = "AUTH_FAILED"
	ReplyBusy         = "Only one client is allowed at a time. Closing connection."
	ReplyAuthRequired = "Authentication required. Closing connection."
	ReplyUnknown      = "Unknown command"
	ReplyInvalidState = "Error: Invalid JSON in STATE message"

	processingErrorPrefix = "Error processing state: "
)

// Kind is the type of a client frame, decided by its prefix.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindKey
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindKey:
		return "key"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Message is a classified client frame.
type Message struct {
	Kind Kind
	// Body is the text after the prefix with surrounding whitespace removed.
	Body string
	Raw  string
}

// Classify splits raw into its kind and body. Prefixes are case-sensitive.
func Classify(raw string) Message {
	for _, p := range []struct {
		prefix string
		kind   Kind
	}{
		{PrefixAuth, KindAuth},
		{PrefixKey, KindKey},
		{PrefixState, KindState},
	} {
		if strings.HasPrefix(raw, p.prefix) {
			return Message{Kind: p.kind, Body: strings.TrimSpace(raw[len(p.prefix):]), Raw: raw}
		}
	}
	return Message{Kind: KindUnknown, Raw: raw}
}

// StatePayload is the body of a STATE frame. Mouse and Scroll are nil when
// absent or null.
type StatePayload struct {
	Keys   []string `json:"keys"`
	Mouse  *string  `json:"mouse"`
	Scroll *int     `json:"scroll"`
}

// ParseState decodes a STATE body, which must be a JSON object. Any decoding
// failure wraps ErrInvalidState.
func ParseState(body string) (StatePayload, error) {
	if !strings.HasPrefix(strings.TrimSpace(body), "{") {
		return StatePayload{}, fmt.Errorf("%w: not a JSON object", ErrInvalidState)
	}

	var p StatePayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return StatePayload{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return p, nil
}

// ProcessingError formats the reply for a failure while applying a valid STATE.
func ProcessingError(detail any) string {
	return fmt.Sprintf("%s%v", processingErrorPrefix, detail)
}

// Auth builds an AUTH frame.
func Auth(secret string) string { return PrefixAuth + secret }

// Key builds a KEY frame.
func Key(token string) string { return PrefixKey + token }

// State builds a STATE frame from p.
func State(p StatePayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return PrefixState + string(data), nil
}
