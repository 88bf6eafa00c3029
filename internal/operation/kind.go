// Package operation turns a partially specified request into a fully
// resolved operation, asking the remote host or the operator for whatever
// wasn't supplied.
package operation

import "fmt"

// Kind names a remote operation.
type Kind string

const (
	KindSSHSession     Kind = "ssh-session"
	KindTunnel         Kind = "tunnel"
	KindRetrieveBackup Kind = "retrieve-backup"
	KindRetrieveFiles  Kind = "retrieve-files"
	KindHostedURL      Kind = "hosted-url"
)

// Kinds lists every operation in chooser order.
var Kinds = []Kind{
	KindSSHSession,
	KindTunnel,
	KindRetrieveBackup,
	KindRetrieveFiles,
	KindHostedURL,
}

// Description is the one-line summary shown in help and the chooser.
func (k Kind) Description() string {
	switch k {
	case KindSSHSession:
		return "Open a shell in the application directory"
	case KindTunnel:
		return "Forward a local port to a container"
	case KindRetrieveBackup:
		return "Copy database backups into the local project"
	case KindRetrieveFiles:
		return "Copy uploaded files into the local project"
	case KindHostedURL:
		return "Print the public URL of the application"
	default:
		return ""
	}
}

// ParseKind maps a command name to its Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", s)
}
