package ssh

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// DefaultKeyPath is the private key tried when no credential flag is given.
const DefaultKeyPath = "~/.ssh/id_rsa"

// Credentials holds the authentication material for a session. Either field
// may be empty; a session needs at least one of them.
type Credentials struct {
	Password string
	Signer   ssh.Signer
}

// LoadCredentials assembles credentials from a password and a private key
// path. A missing key file is tolerated when it is only the default path and
// a password was supplied; an unreadable or unparseable key that was named
// explicitly is an error.
func LoadCredentials(password, keyPath string, keyPathExplicit bool) (Credentials, error) {
	creds := Credentials{Password: password}

	if keyPath == "" {
		return creds, nil
	}

	resolved, err := ExpandPath(keyPath)
	if err != nil {
		return Credentials{}, errors.Wrapf(err, "failed to resolve key path %s", keyPath)
	}

	keyBytes, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) && !keyPathExplicit {
			// Default key absent; password auth may still carry the session.
			return creds, nil
		}
		return Credentials{}, errors.Wrapf(err, "failed to read private key %s", resolved)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return Credentials{}, errors.Wrapf(err, "failed to parse private key %s", resolved)
	}

	creds.Signer = signer
	return creds, nil
}

// Usable reports whether the credentials can authenticate at all.
func (c Credentials) Usable() bool {
	return c.Password != "" || c.Signer != nil
}

// AuthMethods returns the SSH auth methods in preference order: key first,
// then password.
func (c Credentials) AuthMethods() []ssh.AuthMethod {
	var methods []ssh.AuthMethod
	if c.Signer != nil {
		methods = append(methods, ssh.PublicKeys(c.Signer))
	}
	if c.Password != "" {
		methods = append(methods, ssh.Password(c.Password))
	}
	return methods
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine home directory")
	}
	if path == "~" {
		return homeDir, nil
	}
	return filepath.Join(homeDir, path[2:]), nil
}
