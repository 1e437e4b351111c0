// Package signing produces OpenPGP signatures for commits and tags using
// ProtonMail/go-crypto/openpgp -- the same library go-git itself uses for
// signature verification, wired here for the production side spec.md §1
// calls out as a real external collaborator whose internals are out of
// scope but whose contract (sign these bytes with this key) this module
// must still implement concretely.
package signing

import (
	"bytes"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Signer holds a loaded private key, ready to produce detached ASCII
// armored signatures for go-git's CommitOptions.SignKey / tag Signer.
type Signer struct {
	entity *openpgp.Entity
}

// Load reads an armored private key from keyPath. An empty passphrase is
// assumed; callers needing a passphrase-protected key should decrypt it
// out of band before writing keyPath (matching how the CLI's signing flag
// is documented in spec.md §6 "Environment").
func Load(keyPath string) (*Signer, error) {
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entityList, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, err
	}
	if len(entityList) == 0 {
		return nil, errNoKey
	}
	return &Signer{entity: entityList[0]}, nil
}

var errNoKey = signingError("no private key found in keyring")

type signingError string

func (e signingError) Error() string { return string(e) }

// Entity exposes the loaded key for go-git's *openpgp.Entity-typed
// CommitOptions.SignKey and CreateTagOptions.Signer.
func (s *Signer) Entity() *openpgp.Entity { return s.entity }

// Sign produces a detached ASCII-armored signature over data.
func (s *Signer) Sign(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(data), nil); err != nil {
		return "", err
	}
	return buf.String(), nil
}
