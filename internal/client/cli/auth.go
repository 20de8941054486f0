package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mailkeeper/internal/common"
	"github.com/dmitrijs2005/mailkeeper/internal/protocol"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and asks the server to create
// the account. The password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.client.Exchange(protocol.HeaderRegister, protocol.AuthPayload{
		Username: userName,
		Password: string(password),
	})
	if err != nil {
		return err
	}
	if remote, ok := remoteError(resp); ok {
		printlnFn("Registration failed:", remote.Error())
		return remote
	}

	a.userName = canonicalUser(userName)
	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and authenticates against the server.
// On success the username is remembered for the prompt and as the sender
// address of outgoing mail.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.client.Exchange(protocol.HeaderLogin, protocol.AuthPayload{
		Username: userName,
		Password: string(password),
	})
	if err != nil {
		return err
	}
	if remote, ok := remoteError(resp); ok {
		printlnFn("Login failed:", remote.Error())
		return remote
	}

	a.userName = canonicalUser(userName)
	printlnFn(fmt.Sprintf("Logged in as %s@%s", a.userName, a.config.Domain))
	return nil
}

// Logout ends the server-side session and forgets the username.
func (a *App) Logout(ctx context.Context) error {
	resp, err := a.client.Exchange(protocol.HeaderLogout, nil)
	if err != nil {
		return err
	}
	if remote, ok := remoteError(resp); ok {
		return remote
	}

	a.userName = ""
	printlnFn("Logged out")
	return nil
}
