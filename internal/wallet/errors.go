package wallet

import (
	"errors"
	"strings"
)

// ErrUserRejected marks a signing request the key holder declined. Execution
// treats it as fatal for the whole run, unlike ordinary leg failures.
var ErrUserRejected = errors.New("wallet: signature request rejected")

// IsUserRejection classifies rejection errors, including the strings external
// signers surface instead of typed errors.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserRejected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied")
}
