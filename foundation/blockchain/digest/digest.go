// Package digest provides the content hashing used to identify transactions
// and to seal blocks.
package digest

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common"
)

// Size is the length of a rendered hash in hex characters.
const Size = sha256.Size * 2

// zeros is compared against the prefix of a hash to check a POW solution.
const zeros = "0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// Hash returns the sha256 digest of the data as a lower case hex string
// without a 0x prefix.
func Hash(data string) string {
	hash := sha256.Sum256([]byte(data))
	return common.Bytes2Hex(hash[:])
}

// Solved checks the hash to make sure it complies with the POW rules. We
// need to match a difficulty number of leading 0's.
func Solved(hash string, difficulty uint) bool {
	if len(hash) != Size || difficulty > Size {
		return false
	}

	return hash[:difficulty] == zeros[:difficulty]
}
