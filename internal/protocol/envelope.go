// Package protocol defines the wire envelope exchanged between the mail
// client and server. One framed message carries exactly one JSON envelope of
// the form {"header": <tag>, "payload": <object>}.
package protocol

import (
	"encoding/json"
	"errors"
	"time"
)

// Request header tags.
const (
	HeaderRegister    = "AUTH_REGISTER"
	HeaderLogin       = "AUTH_LOGIN"
	HeaderLogout      = "AUTH_LOGOUT"
	HeaderInboxList   = "INBOX_READING_REQUEST"
	HeaderInboxChoice = "INBOX_READING_CHOICE"
	HeaderSend        = "EMAIL_SENDING"
	HeaderStats       = "STATS_REQUEST"
	HeaderBye         = "BYE"
)

// Response header tags.
const (
	HeaderOK    = "OK"
	HeaderError = "ERROR"
)

var (
	ErrMissingHeader  = errors.New("envelope has no header")
	ErrMissingPayload = errors.New("envelope has no payload")
)

// Envelope is the decoded {header, payload} unit. Payload is kept raw so the
// dispatcher can decode it into the type the header demands.
type Envelope struct {
	Header  string          `json:"header"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AuthPayload carries credentials for AUTH_REGISTER and AUTH_LOGIN.
type AuthPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChoicePayload carries the 1-based index for INBOX_READING_CHOICE.
type ChoicePayload struct {
	Choice int `json:"choice"`
}

// MessagePayload is a full mail record. It is both the EMAIL_SENDING request
// payload and the stored on-disk representation of a message.
type MessagePayload struct {
	Sender      string `json:"sender"`
	Destination string `json:"destination"`
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	Content     string `json:"content"`
}

// MessageListPayload carries formatted inbox summaries, newest first.
type MessageListPayload struct {
	EmailList []string `json:"email_list"`
}

// StatsPayload carries the mailbox message count and total stored byte size.
type StatsPayload struct {
	Count int   `json:"count"`
	Size  int64 `json:"size"`
}

// ErrorPayload carries the user-visible message of an ERROR response.
type ErrorPayload struct {
	ErrorMessage string `json:"error_message"`
}

// NewEnvelope builds an envelope with the given header and payload. A nil
// payload yields an envelope with the payload field omitted.
func NewEnvelope(header string, payload any) (Envelope, error) {
	env := Envelope{Header: header}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, err
		}
		env.Payload = raw
	}
	return env, nil
}

// OK builds an OK response envelope. Passing a nil payload is allowed.
func OK(payload any) (Envelope, error) {
	return NewEnvelope(HeaderOK, payload)
}

// Error builds an ERROR response envelope carrying msg.
func Error(msg string) Envelope {
	env, _ := NewEnvelope(HeaderError, ErrorPayload{ErrorMessage: msg})
	return env
}

// Encode serializes the envelope to its wire form.
func Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// Decode parses one wire message into an envelope. An envelope without a
// header tag is rejected.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	if env.Header == "" {
		return Envelope{}, ErrMissingHeader
	}
	return env, nil
}

// DecodePayload decodes the envelope payload into v. It fails if the
// envelope carries no payload at all.
func (e Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return ErrMissingPayload
	}
	return json.Unmarshal(e.Payload, v)
}

// CurrentTimestamp returns the current UTC time in the format used for the
// date field of outgoing messages.
func CurrentTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
