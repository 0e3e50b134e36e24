package pkg

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const (
	RoomCodeLength   = 4
	RoomCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Random produces random strings; tests swap it for a predictable sequence.
type Random interface {
	String(length int, alphabet string) string
}

type cryptoRandom struct{}

func NewRandom() Random {
	return cryptoRandom{}
}

func (cryptoRandom) String(length int, alphabet string) string {
	limit := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)

	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		out[i] = alphabet[n.Int64()]
	}

	return string(out)
}

// GenerateConnectionID - generates a new unique connection identifier.
func GenerateConnectionID() string {
	return uuid.NewString()
}

// GenerateSessionID - generates a new unique session identifier.
func GenerateSessionID() string {
	return "session_" + uuid.NewString()
}

// GenerateRoomCode - generates a short human-shareable room code.
func GenerateRoomCode(random Random) string {
	return random.String(RoomCodeLength, RoomCodeAlphabet)
}
