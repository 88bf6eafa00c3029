package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// EncryptedKeyError reports a private key that needs a passphrase. rpio
// never prompts for one; the key has to be loaded into an agent.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is passphrase protected", e.Path)
}

// authMethods lists, in order: the agent, RPIO_SSH_KEY, the host's
// IdentityFile, then the default key files.
func authMethods(settings *sshSettings) []ssh.AuthMethod {
	var methods []ssh.AuthMethod
	if a := sshAgentAuth(); a != nil {
		methods = append(methods, a)
	}

	seen := make(map[string]bool)
	keys := append([]string{os.Getenv("RPIO_SSH_KEY"), settings.identityFile}, defaultKeyFiles()...)
	for _, path := range keys {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true

		method, err := keyFileAuth(path)
		if err != nil {
			var enc *EncryptedKeyError
			if stderrors.As(err, &enc) {
				settings.encryptedKeys = append(settings.encryptedKeys, path)
			}
			continue
		}
		methods = append(methods, method)
	}
	return methods
}

var (
	agentOnce   sync.Once
	agentConn   net.Conn
	agentClient agent.ExtendedAgent
)

// sshAgentAuth uses the agent at SSH_AUTH_SOCK. It returns nil when there
// is no agent or the agent holds no keys, since offering an empty agent
// first makes some servers give up before the key files are tried.
func sshAgentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})
	if agentClient == nil {
		return nil
	}

	if signers, err := agentClient.Signers(); err != nil || len(signers) == 0 {
		return nil
	}
	return ssh.PublicKeysCallback(agentClient.Signers)
}

// CloseAgent closes the agent connection, if one was opened.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

// keyFileAuth loads an unencrypted private key. Keys needing a passphrase
// yield *EncryptedKeyError.
func keyFileAuth(path string) (ssh.AuthMethod, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || bytes.Contains(data, []byte("ENCRYPTED")) {
			return nil, &EncryptedKeyError{Path: path}
		}
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

func defaultKeyFiles() []string {
	dir := filepath.Join(homeDir(), ".ssh")
	return []string{
		filepath.Join(dir, "id_ed25519"),
		filepath.Join(dir, "id_rsa"),
		filepath.Join(dir, "id_ecdsa"),
	}
}

func addKeysSuggestion(keys []string) string {
	cmd := "ssh-add"
	if runtime.GOOS == "darwin" {
		cmd = "ssh-add --apple-use-keychain"
	}

	var sb strings.Builder
	sb.WriteString("Load the key(s) into your agent:\n")
	for _, key := range keys {
		fmt.Fprintf(&sb, "  %s %s\n", cmd, key)
	}
	return sb.String()
}
