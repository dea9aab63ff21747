package verify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedisct1/go-minisign"
)

// ErrSignatureConfig is returned when only one of the signature and public
// key paths is set.
var ErrSignatureConfig = errors.New("minisign verification needs both a signature and a public key")

// IndexSignature names the detached minisign signature of the index and the
// public key that must have produced it. The zero value disables
// verification.
type IndexSignature struct {
	SigPath    string
	PubKeyPath string
}

func (s IndexSignature) Enabled() bool {
	return strings.TrimSpace(s.SigPath) != "" || strings.TrimSpace(s.PubKeyPath) != ""
}

// Verify checks content against the configured signature. It is a no-op
// when verification is disabled.
func (s IndexSignature) Verify(content []byte) error {
	if !s.Enabled() {
		return nil
	}
	if strings.TrimSpace(s.SigPath) == "" || strings.TrimSpace(s.PubKeyPath) == "" {
		return ErrSignatureConfig
	}

	pubKey, err := minisign.NewPublicKeyFromFile(s.PubKeyPath)
	if err != nil {
		return fmt.Errorf("read minisign pubkey %s: %w", s.PubKeyPath, err)
	}
	sig, err := minisign.NewSignatureFromFile(s.SigPath)
	if err != nil {
		return fmt.Errorf("read minisign index signature %s: %w", s.SigPath, err)
	}

	// go-minisign reports a mismatch as an error, not only as false.
	valid, err := pubKey.Verify(content, sig)
	if err != nil {
		return fmt.Errorf("index signature verification failed: %w", err)
	}
	if !valid {
		return errors.New("index signature verification failed")
	}
	return nil
}
