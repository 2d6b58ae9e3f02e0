package blockchain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrSignatureMismatch is returned when a signature was not produced by the claimed wallet
var ErrSignatureMismatch = errors.New("signature does not match wallet address")

// NormalizeAddress trims the address and, when it is an EVM hex address,
// returns its EIP-55 checksum form. Other address formats are returned trimmed.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if common.IsHexAddress(address) {
		return common.HexToAddress(address).Hex()
	}
	return address
}

// IsEVMAddress reports whether the address is a 20-byte hex address
func IsEVMAddress(address string) bool {
	return common.IsHexAddress(strings.TrimSpace(address))
}

// RecoverPersonalSigner returns the checksummed address that produced an
// EIP-191 personal_sign signature over message.
func RecoverPersonalSigner(message, signatureHex string) (string, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return "", fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("invalid signature length %d", len(sig))
	}

	// Wallets emit V as 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// VerifyPersonalSignature checks that wallet signed message
func VerifyPersonalSignature(wallet, message, signatureHex string) error {
	signer, err := RecoverPersonalSigner(message, signatureHex)
	if err != nil {
		return err
	}
	if !strings.EqualFold(signer, strings.TrimSpace(wallet)) {
		return ErrSignatureMismatch
	}
	return nil
}
