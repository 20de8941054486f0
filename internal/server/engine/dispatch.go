package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mailkeeper/internal/common"
	"github.com/dmitrijs2005/mailkeeper/internal/logging"
	"github.com/dmitrijs2005/mailkeeper/internal/protocol"
)

// User-visible error messages. MsgLoginFailed covers both unknown-account
// and bad-credential failures so responses cannot reveal which one occurred.
const (
	MsgInvalidRequest    = "invalid request"
	MsgNotLoggedIn       = "not logged in"
	MsgLoginFailed       = "invalid username or password"
	MsgInvalidUsername   = "invalid username"
	MsgWeakPassword      = "password does not meet the security policy"
	MsgUsernameTaken     = "username already taken"
	MsgInvalidChoice     = "invalid choice"
	MsgExternalRecipient = "external recipients are not supported"
	MsgUnknownRecipient  = "recipient not found, message moved to lost mail"
	MsgServerError       = "internal server error"
)

// summaryFormat renders one inbox listing line.
const summaryFormat = "#%d From: %s Subject: %s Date: %s"

// dispatch routes one well-formed envelope to its handler and returns
// exactly one response envelope. A returned error means the request is a
// protocol violation and the connection must be torn down.
func (e *Engine) dispatch(ctx context.Context, connID string, env protocol.Envelope, log logging.Logger) (protocol.Envelope, error) {
	switch env.Header {

	case protocol.HeaderRegister:
		return e.handleRegister(ctx, connID, env, log)

	case protocol.HeaderLogin:
		return e.handleLogin(ctx, connID, env, log)

	case protocol.HeaderLogout:
		// never fails, even when anonymous
		e.sessions.Clear(connID)
		return protocol.OK(nil)

	case protocol.HeaderInboxList:
		return e.handleInboxList(ctx, connID, log)

	case protocol.HeaderInboxChoice:
		return e.handleInboxChoice(ctx, connID, env, log)

	case protocol.HeaderSend:
		return e.handleSend(ctx, connID, env, log)

	case protocol.HeaderStats:
		return e.handleStats(ctx, connID, log)

	default:
		log.Warn(ctx, "unknown request header", "header", env.Header)
		return protocol.Error(MsgInvalidRequest), nil
	}
}

func (e *Engine) handleRegister(ctx context.Context, connID string, env protocol.Envelope, log logging.Logger) (protocol.Envelope, error) {
	var auth protocol.AuthPayload
	if err := env.DecodePayload(&auth); err != nil {
		return protocol.Envelope{}, fmt.Errorf("%w: %v", common.ErrMalformedRequest, err)
	}

	canon, err := e.store.CreateAccount(auth.Username, auth.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidUsername):
			return protocol.Error(MsgInvalidUsername), nil
		case errors.Is(err, common.ErrWeakPassword):
			return protocol.Error(MsgWeakPassword), nil
		case errors.Is(err, common.ErrUsernameTaken):
			return protocol.Error(MsgUsernameTaken), nil
		default:
			log.Error(ctx, "creating account", "error", err)
			return protocol.Error(MsgServerError), nil
		}
	}

	// a fresh account starts its session immediately
	e.sessions.Bind(connID, canon)
	log.Info(ctx, "account registered", "user", canon)
	return protocol.OK(nil)
}

func (e *Engine) handleLogin(ctx context.Context, connID string, env protocol.Envelope, log logging.Logger) (protocol.Envelope, error) {
	var auth protocol.AuthPayload
	if err := env.DecodePayload(&auth); err != nil {
		return protocol.Envelope{}, fmt.Errorf("%w: %v", common.ErrMalformedRequest, err)
	}

	canon, err := e.store.VerifyCredential(auth.Username, auth.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnknownAccount) || errors.Is(err, common.ErrBadCredential) {
			return protocol.Error(MsgLoginFailed), nil
		}
		log.Error(ctx, "verifying credential", "error", err)
		return protocol.Error(MsgServerError), nil
	}

	e.sessions.Bind(connID, canon)
	log.Info(ctx, "user logged in", "user", canon)
	return protocol.OK(nil)
}

func (e *Engine) handleInboxList(ctx context.Context, connID string, log logging.Logger) (protocol.Envelope, error) {
	username, ok := e.sessions.Lookup(connID)
	if !ok {
		return protocol.Error(MsgNotLoggedIn), nil
	}

	summaries, err := e.store.ListMessages(username)
	if err != nil {
		log.Error(ctx, "listing mailbox", "user", username, "error", err)
		return protocol.Error(MsgServerError), nil
	}

	lines := make([]string, 0, len(summaries))
	for i, s := range summaries {
		lines = append(lines, fmt.Sprintf(summaryFormat, i+1, s.Sender, s.Subject, s.Date))
	}
	return protocol.OK(protocol.MessageListPayload{EmailList: lines})
}

func (e *Engine) handleInboxChoice(ctx context.Context, connID string, env protocol.Envelope, log logging.Logger) (protocol.Envelope, error) {
	username, ok := e.sessions.Lookup(connID)
	if !ok {
		return protocol.Error(MsgNotLoggedIn), nil
	}

	var choice protocol.ChoicePayload
	if err := env.DecodePayload(&choice); err != nil {
		return protocol.Envelope{}, fmt.Errorf("%w: %v", common.ErrMalformedRequest, err)
	}

	msg, err := e.store.ReadMessage(username, choice.Choice)
	if err != nil {
		if errors.Is(err, common.ErrIndexOutOfRange) {
			return protocol.Error(MsgInvalidChoice), nil
		}
		log.Error(ctx, "reading message", "user", username, "error", err)
		return protocol.Error(MsgServerError), nil
	}
	return protocol.OK(msg)
}

func (e *Engine) handleSend(ctx context.Context, connID string, env protocol.Envelope, log logging.Logger) (protocol.Envelope, error) {
	_, ok := e.sessions.Lookup(connID)
	if !ok {
		return protocol.Error(MsgNotLoggedIn), nil
	}

	var msg protocol.MessagePayload
	if err := env.DecodePayload(&msg); err != nil {
		return protocol.Envelope{}, fmt.Errorf("%w: %v", common.ErrMalformedRequest, err)
	}

	localPart, ok := e.localPart(msg.Destination)
	if !ok {
		// rejected before any storage is touched
		return protocol.Error(MsgExternalRecipient), nil
	}

	if err := e.store.Append(localPart, &msg); err != nil {
		if errors.Is(err, common.ErrUnknownRecipient) {
			log.Info(ctx, "message filed to lost mail", "destination", msg.Destination)
			return protocol.Error(MsgUnknownRecipient), nil
		}
		log.Error(ctx, "storing message", "destination", msg.Destination, "error", err)
		return protocol.Error(MsgServerError), nil
	}

	log.Info(ctx, "message delivered", "destination", msg.Destination)
	return protocol.OK(nil)
}

func (e *Engine) handleStats(ctx context.Context, connID string, log logging.Logger) (protocol.Envelope, error) {
	username, ok := e.sessions.Lookup(connID)
	if !ok {
		return protocol.Error(MsgNotLoggedIn), nil
	}

	count, size, err := e.store.Stats(username)
	if err != nil {
		log.Error(ctx, "aggregating stats", "user", username, "error", err)
		return protocol.Error(MsgServerError), nil
	}
	return protocol.OK(protocol.StatsPayload{Count: count, Size: size})
}

// localPart splits destination into its local part, accepting only
// addresses under the server's own domain.
func (e *Engine) localPart(destination string) (string, bool) {
	at := strings.LastIndex(destination, "@")
	if at <= 0 {
		return "", false
	}
	if !strings.EqualFold(destination[at+1:], e.domain) {
		return "", false
	}
	return destination[:at], true
}
