// Package cli implements the interactive MailKeeper client: a small REPL
// over one server connection for registering, logging in, and composing and
// reading mail.
package cli

import (
	"bufio"
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/mailkeeper/internal/client/client"
	"github.com/dmitrijs2005/mailkeeper/internal/client/config"
	"github.com/dmitrijs2005/mailkeeper/internal/protocol"
)

// exchanger is the connection surface the CLI needs. The real client.Client
// satisfies it; tests provide a stub.
type exchanger interface {
	Exchange(header string, payload any) (protocol.Envelope, error)
	SendOnly(header string) error
	Close() error
}

type App struct {
	config   *config.Config
	client   exchanger
	userName string
	reader   *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	cl, err := client.Dial(ctx, c.ServerAddr, c.DialTimeout, c.DialAttempts)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: cl, reader: bufio.NewReader(os.Stdin)}, nil
}

// Run drives the REPL until the user quits, then announces the departure to
// the server and closes the connection.
func (a *App) Run(ctx context.Context) {
	defer a.quit()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

// quit sends BYE, the one request the server never answers, and closes the
// socket.
func (a *App) quit() {
	_ = a.client.SendOnly(protocol.HeaderBye)
	_ = a.client.Close()
}

// remoteError extracts the server's error message from an ERROR response.
func remoteError(resp protocol.Envelope) (error, bool) {
	if resp.Header != protocol.HeaderError {
		return nil, false
	}
	var p protocol.ErrorPayload
	if err := resp.DecodePayload(&p); err != nil {
		return errors.New("unreadable server error"), true
	}
	return errors.New(p.ErrorMessage), true
}
