package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mailkeeper/internal/protocol"
)

// getMultiline is an indirection over GetMultiline, swappable in tests.
var getMultiline = GetMultiline

func canonicalUser(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Send composes a message interactively and submits it. The sender address is
// derived from the logged-in username and the configured mail domain.
func (a *App) Send(ctx context.Context) error {
	destination, err := getSimpleText(a.reader, "Enter destination address", os.Stdout)
	if err != nil {
		return err
	}

	subject, err := getSimpleText(a.reader, "Enter subject", os.Stdout)
	if err != nil {
		return err
	}

	content, err := getMultiline(a.reader, "Enter message body", os.Stdout)
	if err != nil {
		return err
	}

	resp, err := a.client.Exchange(protocol.HeaderSend, protocol.MessagePayload{
		Sender:      fmt.Sprintf("%s@%s", a.userName, a.config.Domain),
		Destination: destination,
		Subject:     subject,
		Date:        protocol.CurrentTimestamp(),
		Content:     content,
	})
	if err != nil {
		return err
	}
	if remote, ok := remoteError(resp); ok {
		printlnFn("Sending failed:", remote.Error())
		return remote
	}

	printlnFn("Message sent")
	return nil
}

// Read lists the inbox, prompts for a message number and displays the chosen
// message in full.
func (a *App) Read(ctx context.Context) error {
	resp, err := a.client.Exchange(protocol.HeaderInboxList, nil)
	if err != nil {
		return err
	}
	if remote, ok := remoteError(resp); ok {
		printlnFn("Inbox unavailable:", remote.Error())
		return remote
	}

	var list protocol.MessageListPayload
	if err := resp.DecodePayload(&list); err != nil {
		return err
	}
	if len(list.EmailList) == 0 {
		printlnFn("Inbox is empty")
		return nil
	}
	for _, line := range list.EmailList {
		printlnFn(line)
	}

	raw, err := getSimpleText(a.reader, "Enter message number", os.Stdout)
	if err != nil {
		return err
	}
	choice, err := strconv.Atoi(raw)
	if err != nil {
		printlnFn("Not a number:", raw)
		return err
	}

	resp, err = a.client.Exchange(protocol.HeaderInboxChoice, protocol.ChoicePayload{Choice: choice})
	if err != nil {
		return err
	}
	if remote, ok := remoteError(resp); ok {
		printlnFn("Cannot read message:", remote.Error())
		return remote
	}

	var msg protocol.MessagePayload
	if err := resp.DecodePayload(&msg); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("From: %s", msg.Sender))
	printlnFn(fmt.Sprintf("To: %s", msg.Destination))
	printlnFn(fmt.Sprintf("Subject: %s", msg.Subject))
	printlnFn(fmt.Sprintf("Date: %s", msg.Date))
	printlnFn("")
	printlnFn(msg.Content)
	return nil
}

// Stats fetches and prints the mailbox message count and total size.
func (a *App) Stats(ctx context.Context) error {
	resp, err := a.client.Exchange(protocol.HeaderStats, nil)
	if err != nil {
		return err
	}
	if remote, ok := remoteError(resp); ok {
		printlnFn("Stats unavailable:", remote.Error())
		return remote
	}

	var stats protocol.StatsPayload
	if err := resp.DecodePayload(&stats); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Messages: %d", stats.Count))
	printlnFn(fmt.Sprintf("Total size: %d bytes", stats.Size))
	return nil
}
