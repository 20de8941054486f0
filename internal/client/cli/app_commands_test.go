package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mailkeeper/internal/client/config"
	"github.com/dmitrijs2005/mailkeeper/internal/protocol"
)

// fakeExchanger scripts server responses per request header and records what
// the CLI sent.
type fakeExchanger struct {
	responses map[string]protocol.Envelope
	sent      []protocol.Envelope
	byeSent   bool
	closed    bool
}

func (f *fakeExchanger) Exchange(header string, payload any) (protocol.Envelope, error) {
	env, err := protocol.NewEnvelope(header, payload)
	if err != nil {
		return protocol.Envelope{}, err
	}
	f.sent = append(f.sent, env)
	resp, ok := f.responses[header]
	if !ok {
		resp, _ = protocol.OK(nil)
	}
	return resp, nil
}

func (f *fakeExchanger) SendOnly(header string) error {
	if header == protocol.HeaderBye {
		f.byeSent = true
	}
	return nil
}

func (f *fakeExchanger) Close() error {
	f.closed = true
	return nil
}

func newTestApp(fx *fakeExchanger, input string) *App {
	return &App{
		config: &config.Config{Domain: "mailkeeper.local"},
		client: fx,
		reader: bufio.NewReader(strings.NewReader(input)),
	}
}

func stubInput(t *testing.T, text string, password []byte) {
	t.Helper()
	origText, origPass := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		return text, nil
	}
	getPassword = func(io.Writer) ([]byte, error) {
		pw := make([]byte, len(password))
		copy(pw, password)
		return pw, nil
	}
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPass })
}

// silencePrintln captures REPL output lines instead of writing to stdout.
func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		lines = append(lines, strings.TrimRight(fmt.Sprintln(args...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRegister_SendsCredentialsAndBindsUser(t *testing.T) {
	silencePrintln(t)
	stubInput(t, "Alice", []byte("Str0ngPassw0rd"))

	fx := &fakeExchanger{}
	a := newTestApp(fx, "")

	err := a.Register(context.Background())
	require.NoError(t, err)

	require.Len(t, fx.sent, 1)
	assert.Equal(t, protocol.HeaderRegister, fx.sent[0].Header)

	var p protocol.AuthPayload
	require.NoError(t, fx.sent[0].DecodePayload(&p))
	assert.Equal(t, "Alice", p.Username)
	assert.Equal(t, "Str0ngPassw0rd", p.Password)

	assert.Equal(t, "alice", a.userName)
	assert.True(t, a.isLoggedIn())
}

func TestRegister_ServerErrorLeavesLoggedOut(t *testing.T) {
	silencePrintln(t)
	stubInput(t, "alice", []byte("Str0ngPassw0rd"))

	fx := &fakeExchanger{responses: map[string]protocol.Envelope{
		protocol.HeaderRegister: protocol.Error("username already exists"),
	}}
	a := newTestApp(fx, "")

	err := a.Register(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.False(t, a.isLoggedIn())
}

func TestLogin_SuccessAndFailure(t *testing.T) {
	silencePrintln(t)
	stubInput(t, "Bob", []byte("Str0ngPassw0rd"))

	fx := &fakeExchanger{}
	a := newTestApp(fx, "")
	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "bob", a.userName)

	fx2 := &fakeExchanger{responses: map[string]protocol.Envelope{
		protocol.HeaderLogin: protocol.Error("invalid username or password"),
	}}
	a2 := newTestApp(fx2, "")
	err := a2.Login(context.Background())
	require.Error(t, err)
	assert.False(t, a2.isLoggedIn())
}

func TestLogout_ClearsUser(t *testing.T) {
	silencePrintln(t)

	fx := &fakeExchanger{}
	a := newTestApp(fx, "")
	a.userName = "alice"

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	require.Len(t, fx.sent, 1)
	assert.Equal(t, protocol.HeaderLogout, fx.sent[0].Header)
}

func TestSend_BuildsMessageFromPromptsAndIdentity(t *testing.T) {
	silencePrintln(t)

	origText, origMulti := getSimpleText, getMultiline
	prompts := []string{"bob@mailkeeper.local", "hello"}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		next := prompts[0]
		prompts = prompts[1:]
		return next, nil
	}
	getMultiline = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		return "line one\nline two", nil
	}
	t.Cleanup(func() { getSimpleText, getMultiline = origText, origMulti })

	fx := &fakeExchanger{}
	a := newTestApp(fx, "")
	a.userName = "alice"

	require.NoError(t, a.Send(context.Background()))

	require.Len(t, fx.sent, 1)
	assert.Equal(t, protocol.HeaderSend, fx.sent[0].Header)

	var m protocol.MessagePayload
	require.NoError(t, fx.sent[0].DecodePayload(&m))
	assert.Equal(t, "alice@mailkeeper.local", m.Sender)
	assert.Equal(t, "bob@mailkeeper.local", m.Destination)
	assert.Equal(t, "hello", m.Subject)
	assert.Equal(t, "line one\nline two", m.Content)
	assert.NotEmpty(t, m.Date)
}

func TestRead_ListsThenFetchesChosenMessage(t *testing.T) {
	out := silencePrintln(t)
	stubInput(t, "1", nil)

	listResp, err := protocol.OK(protocol.MessageListPayload{EmailList: []string{
		"#1 From: bob@mailkeeper.local Subject: hi Date: 2026-08-30T10:00:00Z",
	}})
	require.NoError(t, err)
	msgResp, err := protocol.OK(protocol.MessagePayload{
		Sender:      "bob@mailkeeper.local",
		Destination: "alice@mailkeeper.local",
		Subject:     "hi",
		Date:        "2026-08-30T10:00:00Z",
		Content:     "body",
	})
	require.NoError(t, err)

	fx := &fakeExchanger{responses: map[string]protocol.Envelope{
		protocol.HeaderInboxList:   listResp,
		protocol.HeaderInboxChoice: msgResp,
	}}
	a := newTestApp(fx, "")
	a.userName = "alice"

	require.NoError(t, a.Read(context.Background()))

	require.Len(t, fx.sent, 2)
	var c protocol.ChoicePayload
	require.NoError(t, fx.sent[1].DecodePayload(&c))
	assert.Equal(t, 1, c.Choice)

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Subject: hi")
	assert.Contains(t, joined, "body")
}

func TestRead_EmptyInboxSkipsChoice(t *testing.T) {
	silencePrintln(t)

	listResp, err := protocol.OK(protocol.MessageListPayload{EmailList: nil})
	require.NoError(t, err)

	fx := &fakeExchanger{responses: map[string]protocol.Envelope{
		protocol.HeaderInboxList: listResp,
	}}
	a := newTestApp(fx, "")
	a.userName = "alice"

	require.NoError(t, a.Read(context.Background()))
	require.Len(t, fx.sent, 1)
}

func TestStats_PrintsCountAndSize(t *testing.T) {
	out := silencePrintln(t)

	statsResp, err := protocol.OK(protocol.StatsPayload{Count: 3, Size: 4096})
	require.NoError(t, err)

	fx := &fakeExchanger{responses: map[string]protocol.Envelope{
		protocol.HeaderStats: statsResp,
	}}
	a := newTestApp(fx, "")
	a.userName = "alice"

	require.NoError(t, a.Stats(context.Background()))

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Messages: 3")
	assert.Contains(t, joined, "Total size: 4096 bytes")
}

func TestQuit_SendsByeAndCloses(t *testing.T) {
	fx := &fakeExchanger{}
	a := newTestApp(fx, "")

	a.quit()

	assert.True(t, fx.byeSent)
	assert.True(t, fx.closed)
}
