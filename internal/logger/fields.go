package logger

import (
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"
)

// UserKey identifies a chat user in logs without writing the raw key
// (usually a phone number or email).
func UserKey(key string) zap.Field {
	sum := sha256.Sum256([]byte(key))
	return zap.String("user", hex.EncodeToString(sum[:6]))
}
