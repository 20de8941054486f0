// Package mailbox implements the filesystem-backed mail store. Each account
// is a directory under the store root holding a single credential file and
// zero or more immutable message records; a shared lost-mail directory holds
// messages addressed to unknown local recipients. Message filenames embed a
// monotonically increasing timestamp, so sorting by name sorts by recency.
package mailbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mailkeeper/internal/common"
	"github.com/dmitrijs2005/mailkeeper/internal/protocol"
)

const (
	credentialFile = "passwd"
	lostMailDir    = "lost_mail"
	messageExt     = ".json"
)

// Summary describes one stored message for inbox listings.
type Summary struct {
	Sender  string
	Subject string
	Date    string
}

// Store is the filesystem mailbox store. All operations serialize on one
// mutex: listing, reading and appending are not otherwise atomic with
// respect to each other, and sessions run on separate goroutines.
type Store struct {
	mu   sync.Mutex
	root string
	seq  uint64
}

// New opens (or initializes) a store rooted at dir, creating the root and
// the lost-mail directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, lostMailDir), 0o750); err != nil {
		return nil, fmt.Errorf("%w: initializing data dir: %v", common.ErrStorage, err)
	}
	return &Store{root: dir}, nil
}

// Canonical returns the canonical (lower-case) form of a username.
func Canonical(username string) string {
	return strings.ToLower(username)
}

// CreateAccount validates the username shape and password strength, then
// creates the account directory and persists the salted password digest.
// Validation failures leave storage untouched. Returns the canonical
// username on success.
func (s *Store) CreateAccount(username, password string) (string, error) {
	if err := ValidateUsername(username); err != nil {
		return "", err
	}
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	canon := Canonical(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.userDir(canon)
	if _, err := os.Stat(dir); err == nil {
		return "", common.ErrUsernameTaken
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: probing account dir: %v", common.ErrStorage, err)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: creating account dir: %v", common.ErrStorage, err)
	}
	record := encodeCredential(password) + "\n"
	if err := os.WriteFile(filepath.Join(dir, credentialFile), []byte(record), 0o600); err != nil {
		return "", fmt.Errorf("%w: writing credential file: %v", common.ErrStorage, err)
	}
	return canon, nil
}

// VerifyCredential checks username/password against the stored digest using
// a constant-time comparison. It returns ErrUnknownAccount when no such
// account exists and ErrBadCredential on digest mismatch; callers must
// surface both as the same generic message.
func (s *Store) VerifyCredential(username, password string) (string, error) {
	canon := Canonical(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := os.ReadFile(filepath.Join(s.userDir(canon), credentialFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", common.ErrUnknownAccount
		}
		return "", fmt.Errorf("%w: reading credential file: %v", common.ErrStorage, err)
	}

	ok, err := checkCredential(string(record), password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", common.ErrBadCredential
	}
	return canon, nil
}

// ListMessages returns one summary per stored message, newest first. An
// empty mailbox yields an empty slice, not an error.
func (s *Store) ListMessages(username string) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.messageNames(username)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(names))
	for _, name := range names {
		msg, err := s.readRecord(username, name)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summary{Sender: msg.Sender, Subject: msg.Subject, Date: msg.Date})
	}
	return summaries, nil
}

// ReadMessage returns the full record at the given 1-based position of the
// current newest-first listing. The listing is re-derived per call, so a
// message delivered between a list and a read can shift indices; that race
// is part of the protocol contract.
func (s *Store) ReadMessage(username string, index int) (*protocol.MessagePayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.messageNames(username)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > len(names) {
		return nil, common.ErrIndexOutOfRange
	}
	return s.readRecord(username, names[index-1])
}

// Append delivers a message to the mailbox of the given recipient local
// part. If no such account exists, the record is filed into the lost-mail
// directory instead and ErrUnknownRecipient is returned so the sender sees
// the delivery as failed.
func (s *Store) Append(localPart string, msg *protocol.MessagePayload) error {
	canon := Canonical(localPart)

	s.mu.Lock()
	defer s.mu.Unlock()

	deliverable := ValidateUsername(canon) == nil
	if deliverable {
		if _, err := os.Stat(s.userDir(canon)); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: probing recipient dir: %v", common.ErrStorage, err)
			}
			deliverable = false
		}
	}

	dir := filepath.Join(s.root, lostMailDir)
	if deliverable {
		dir = s.userDir(canon)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: encoding message: %v", common.ErrStorage, err)
	}
	if err := os.WriteFile(filepath.Join(dir, s.nextRecordName()), data, 0o640); err != nil {
		return fmt.Errorf("%w: writing message: %v", common.ErrStorage, err)
	}

	if !deliverable {
		return common.ErrUnknownRecipient
	}
	return nil
}

// Stats returns the message count and the total stored byte size of the
// user's mailbox.
func (s *Store) Stats(username string) (int, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.messageNames(username)
	if err != nil {
		return 0, 0, err
	}

	var size int64
	for _, name := range names {
		info, err := os.Stat(filepath.Join(s.userDir(username), name))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: stat message: %v", common.ErrStorage, err)
		}
		size += info.Size()
	}
	return len(names), size, nil
}

func (s *Store) userDir(username string) string {
	return filepath.Join(s.root, username)
}

// messageNames lists message filenames for a user, newest first. Callers
// must hold s.mu.
func (s *Store) messageNames(username string) ([]string, error) {
	entries, err := os.ReadDir(s.userDir(username))
	if err != nil {
		return nil, fmt.Errorf("%w: listing mailbox: %v", common.ErrStorage, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), messageExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *Store) readRecord(username, name string) (*protocol.MessagePayload, error) {
	data, err := os.ReadFile(filepath.Join(s.userDir(username), name))
	if err != nil {
		return nil, fmt.Errorf("%w: reading message: %v", common.ErrStorage, err)
	}
	msg := &protocol.MessagePayload{}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: decoding message: %v", common.ErrStorage, err)
	}
	return msg, nil
}

// nextRecordName produces a filename that sorts lexicographically after
// every name issued before it: a zero-padded nanosecond timestamp plus a
// process-wide sequence number to break same-instant ties. Callers must
// hold s.mu.
func (s *Store) nextRecordName() string {
	s.seq++
	return fmt.Sprintf("%020d_%08d%s", time.Now().UnixNano(), s.seq, messageExt)
}
