// Package crypto provides key management, allowlist claim signing and
// recovery, and merkle proof verification for the auction house.
package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ethSignedMessagePrefix is the EIP-191 personal-message prefix for a 32-byte
// payload.
const ethSignedMessagePrefix = "\x19Ethereum Signed Message:\n32"

// Signer produces allowlist bid claims with a secp256k1 key. In production
// deployments this key lives with the off-chain allowlist service; the house
// itself only ever needs the address.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner creates a Signer from a hex-encoded secp256k1 private key.
func NewSigner(privateKeyHex string) (*Signer, error) {
	keyHex := strings.TrimPrefix(privateKeyHex, "0x")
	pk, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto/signer: invalid private key: %w", err)
	}
	return &Signer{
		privateKey: pk,
		address:    ethcrypto.PubkeyToAddress(pk.PublicKey),
	}, nil
}

// GenerateSigner creates a Signer with a fresh random key. Test helper.
func GenerateSigner() (*Signer, error) {
	pk, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("crypto/signer: generate key: %w", err)
	}
	return &Signer{
		privateKey: pk,
		address:    ethcrypto.PubkeyToAddress(pk.PublicKey),
	}, nil
}

// Address returns the Ethereum address derived from the signer's key.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignBidClaim signs the deterministic claim binding {phase tag, bidder}. The
// returned signature is 65 bytes (r || s || v, v in {27, 28}).
func (s *Signer) SignBidClaim(phaseTag string, bidder common.Address) ([]byte, error) {
	digest := claimDigest(phaseTag, bidder)
	sig, err := ethcrypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("crypto/signer: signing claim: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

// Verifier recovers claim signers. Stateless; satisfies the house's
// ClaimVerifier interface.
type Verifier struct{}

// RecoverBidClaim returns the address that signed the claim for the given
// phase tag and bidder.
func (Verifier) RecoverBidClaim(phaseTag string, bidder common.Address, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("crypto/signer: signature must be 65 bytes, got %d", len(sig))
	}

	// go-ethereum expects the recovery id in {0, 1}.
	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	digest := claimDigest(phaseTag, bidder)
	pub, err := ethcrypto.SigToPub(digest, normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("crypto/signer: recover: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// claimDigest computes the EIP-191 digest of the claim:
//
//	keccak256(prefix || keccak256(keccak256(phaseTag) || leftpad(bidder, 32)))
func claimDigest(phaseTag string, bidder common.Address) []byte {
	claimHash := ethcrypto.Keccak256(
		ethcrypto.Keccak256([]byte(phaseTag)),
		common.LeftPadBytes(bidder.Bytes(), 32),
	)
	return ethcrypto.Keccak256([]byte(ethSignedMessagePrefix), claimHash)
}
