// Package remote names one application on one fleet host and asks that host
// about it: containers, the compose service config, container addresses and
// the public URL.
package remote

import "fmt"

// Identity is the (host, application) pair an operation acts on.
type Identity struct {
	Host    string
	AppName string
}

func (id Identity) String() string {
	return fmt.Sprintf("%s:%s", id.AppName, id.Host)
}
