package util

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Fingerprint 由客户端IP和UA派生提交指纹，仅用于同场次去重，不用于识别个人。
func Fingerprint(clientIP, userAgent string) string {
	sum := sha3.Sum256([]byte(clientIP + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}
