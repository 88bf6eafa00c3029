package operation

import (
	"testing"

	"github.com/redpencil/rpio/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Pending(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"session", Request{Kind: KindSSHSession}, false},
		{"empty tunnel", Request{Kind: KindTunnel}, true},
		{"tunnel without local port", Request{Kind: KindTunnel, Tunnel: TunnelParams{ContainerName: "c", RemotePort: 80}}, true},
		{"complete tunnel", Request{Kind: KindTunnel, Tunnel: TunnelParams{ContainerName: "c", RemotePort: 80, LocalPort: 8080}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Pending())
		})
	}
}

func TestOperation_CommandLine(t *testing.T) {
	id := remote.Identity{Host: "host1", AppName: "app-a"}

	op := &Operation{Kind: KindRetrieveBackup}
	assert.Equal(t, "rpio apps --host host1 --app-name app-a retrieve-backup", op.CommandLine(id))

	op = &Operation{Kind: KindTunnel, Tunnel: TunnelParams{ContainerName: "app-a-web-1", RemotePort: 80, LocalPort: 8080}}
	assert.Equal(t,
		"rpio apps --host host1 --app-name app-a tunnel --container-name app-a-web-1 --host-port 8080 --remote-port 80",
		op.CommandLine(id))
}

func TestOperation_CommandLineQuotes(t *testing.T) {
	op := &Operation{Kind: KindSSHSession}
	got := op.CommandLine(remote.Identity{Host: "host1", AppName: "my app"})
	assert.Equal(t, "rpio apps --host host1 --app-name 'my app' ssh-session", got)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.NotEmpty(t, k.Description())
	}

	_, err := ParseKind("reboot")
	assert.Error(t, err)
}
