package mailbox

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/mailkeeper/internal/common"
)

// argon2id parameters for the password digest.
const (
	digestTime    = 1
	digestMemory  = 64 * 1024
	digestThreads = 4
	digestKeyLen  = 32
	saltLen       = 32
)

// digestPassword derives a one-way digest of password under salt.
func digestPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, digestTime, digestMemory, digestThreads, digestKeyLen)
}

// encodeCredential renders the single-line credential record: the hex salt
// and hex digest separated by '$'. The plaintext password is never stored.
func encodeCredential(password string) string {
	salt := common.GenerateRandByteArray(saltLen)
	digest := digestPassword(password, salt)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(digest)
}

// checkCredential recomputes the digest of candidate under the stored salt
// and compares it to the stored digest in constant time.
func checkCredential(record, candidate string) (bool, error) {
	parts := strings.SplitN(strings.TrimSpace(record), "$", 2)
	if len(parts) != 2 {
		return false, fmt.Errorf("%w: malformed credential record", common.ErrStorage)
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false, fmt.Errorf("%w: malformed credential salt", common.ErrStorage)
	}
	stored, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("%w: malformed credential digest", common.ErrStorage)
	}

	digest := digestPassword(candidate, salt)
	return subtle.ConstantTimeCompare(stored, digest) == 1, nil
}
