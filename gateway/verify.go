package gateway

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputePaymentHash returns the hex digest binding an order id to this
// merchant's credentials: md5(keyID|orderID|secret). The field order
// and pipe delimiter are fixed by the gateway SDK.
func ComputePaymentHash(keyID, orderID, secret string) string {
	sum := md5.Sum([]byte(keyID + "|" + orderID + "|" + secret))
	return hex.EncodeToString(sum[:])
}

// VerifyPaymentHash checks a client-supplied proof against the digest
// computed from server-held credentials. It is the highest-trust signal
// available: the proof cannot be forged without the secret.
//
// Missing credentials are a configuration error, never "unverified" -
// returning false here would let a real payment land as DECLINED.
func VerifyPaymentHash(orderID, claimedHash, secret, keyID string) (bool, error) {
	if secret == "" || keyID == "" {
		return false, fmt.Errorf("payment hash verification requires key id and secret")
	}
	if claimedHash == "" {
		return false, nil
	}
	expected := ComputePaymentHash(keyID, orderID, secret)
	claimed := strings.ToLower(strings.TrimSpace(claimedHash))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(claimed)) == 1, nil
}

// VerifyPaymentHash checks the proof with the client's credentials.
func (c *Client) VerifyPaymentHash(orderID, claimedHash string) (bool, error) {
	return VerifyPaymentHash(orderID, claimedHash, c.secret, c.keyID)
}
