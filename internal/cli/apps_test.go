package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpencil/rpio/internal/config"
	"github.com/redpencil/rpio/internal/errors"
	hosttesting "github.com/redpencil/rpio/internal/host/testing"
	"github.com/redpencil/rpio/internal/inventory"
	"github.com/redpencil/rpio/internal/logger"
	"github.com/redpencil/rpio/internal/operation"
	"github.com/redpencil/rpio/internal/remote"
	"github.com/redpencil/rpio/internal/selector"
	sshtesting "github.com/redpencil/rpio/pkg/sshutil/testing"
)

const cancelAnswer = "<cancel>"

const hostedCompose = `
services:
  identifier:
    image: semtech/mu-identifier:1.10.1
    environment:
      LETSENCRYPT_HOST: app-a.example.org
`

// scriptedConsole answers picks and prompts from fixed lists.
type scriptedConsole struct {
	picks   []string
	prompts []string

	pickTitles   []string
	pickLines    [][]string
	promptTitles []string
}

func (c *scriptedConsole) Pick(title string, lines []string) (string, bool, error) {
	c.pickTitles = append(c.pickTitles, title)
	c.pickLines = append(c.pickLines, lines)
	if len(c.picks) == 0 {
		return "", false, fmt.Errorf("unexpected pick %q", title)
	}
	answer := c.picks[0]
	c.picks = c.picks[1:]
	if answer == cancelAnswer {
		return "", false, nil
	}
	for _, line := range lines {
		if ansi.Strip(line) == answer {
			return line, true, nil
		}
	}
	return "", false, fmt.Errorf("%q not offered in %q", answer, title)
}

func (c *scriptedConsole) Prompt(title string) (string, bool, error) {
	c.promptTitles = append(c.promptTitles, title)
	if len(c.prompts) == 0 {
		return "", false, fmt.Errorf("unexpected prompt %q", title)
	}
	answer := c.prompts[0]
	c.prompts = c.prompts[1:]
	if answer == cancelAnswer {
		return "", false, nil
	}
	return answer, true, nil
}

type testEnv struct {
	w         *WorkflowContext
	connector *hosttesting.FakeConnector
	console   *scriptedConsole
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.SSHConfig = filepath.Join(t.TempDir(), "ssh_config")

	env := &testEnv{
		connector: hosttesting.NewFakeConnector(),
		console:   &scriptedConsole{},
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
	env.w = &WorkflowContext{
		Config:    cfg,
		Log:       logger.Noop(),
		Connector: env.connector,
		Picker:    env.console,
		Prompter:  env.console,
		Stdin:     strings.NewReader(""),
		Stdout:    env.stdout,
		Stderr:    env.stderr,
		WorkDir:   t.TempDir(),
	}
	return env
}

// seed saves an inventory with host1 serving app-a and app-b and host2
// serving shop.
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	store := inventory.NewStore()
	store.Servers["host1"] = inventory.ServerEntry{
		LastUpdated: 1700000000,
		DataFolders: []inventory.DataFolder{{Path: "app-a"}, {Path: "app-b"}},
	}
	store.Servers["host2"] = inventory.ServerEntry{
		LastUpdated: 1700000000,
		DataFolders: []inventory.DataFolder{{Path: "shop"}},
	}
	require.NoError(t, e.w.snapshot().Save(store))
}

func (e *testEnv) run(opts AppsOptions) error {
	return runApps(context.Background(), e.w, opts)
}

func TestRunApps_FullyGiven(t *testing.T) {
	env := newTestEnv(t)
	client := env.connector.AddHost("host1")
	client.SetCommandResponse(`docker compose config`, sshtesting.CommandResponse{Stdout: []byte(hostedCompose)})

	err := env.run(AppsOptions{Host: "host1", AppName: "app-a", Kind: operation.KindHostedURL})

	require.NoError(t, err)
	assert.Equal(t, "https://app-a.example.org\n", env.stdout.String())
	assert.NotContains(t, env.stderr.String(), hintLabel)
	assert.Empty(t, env.console.pickTitles)
	assert.False(t, env.w.snapshot().Exists(), "inventory should not be touched")
}

func TestRunApps_PicksTarget(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	client := env.connector.AddHost("host1")
	client.SetCommandResponse(`docker compose config`, sshtesting.CommandResponse{Stdout: []byte(hostedCompose)})
	env.console.picks = []string{"app-a:host1"}

	err := env.run(AppsOptions{Kind: operation.KindHostedURL})

	require.NoError(t, err)
	assert.Equal(t, []string{"Application"}, env.console.pickTitles)
	assert.Len(t, env.console.pickLines[0], 3)
	assert.Equal(t, "https://app-a.example.org\n", env.stdout.String())

	stderr := ansi.Strip(env.stderr.String())
	assert.Contains(t, stderr, hintLabel)
	assert.Contains(t, stderr, "rpio apps --host host1 --app-name app-a hosted-url")
}

func TestRunApps_ChoosesKind(t *testing.T) {
	env := newTestEnv(t)
	env.console.picks = []string{"hosted-url"}
	env.w.Config.AppsDir = "/srv"

	err := env.run(AppsOptions{Host: "host2", AppName: "shop", DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"Action"}, env.console.pickTitles)
	assert.Equal(t, []string{"ssh-session", "tunnel", "retrieve-backup", "retrieve-files", "hosted-url"},
		env.console.pickLines[0])
	assert.Equal(t, "ssh host2 'cd '\\''/srv/shop'\\'' && docker compose config'\n", env.stdout.String())
	assert.Contains(t, ansi.Strip(env.stderr.String()), "rpio apps --host host2 --app-name shop hosted-url")
}

func TestRunApps_Cancelled(t *testing.T) {
	tests := []struct {
		name  string
		opts  AppsOptions
		picks []string
	}{
		{"target picker", AppsOptions{Kind: operation.KindSSHSession}, []string{cancelAnswer}},
		{"kind chooser", AppsOptions{Host: "host1", AppName: "app-a"}, []string{cancelAnswer}},
		{"container picker", AppsOptions{Host: "host1", AppName: "app-a", Kind: operation.KindTunnel}, []string{cancelAnswer}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seed(t)
			client := env.connector.AddHost("host1")
			client.SetCommandResponse(`docker compose ps`, sshtesting.CommandResponse{Stdout: []byte("app-a-web-1\n")})
			env.console.picks = tt.picks

			err := env.run(tt.opts)

			require.NoError(t, err)
			assert.Equal(t, "Cancelled.\n", env.stderr.String())
			assert.Empty(t, env.stdout.String())
		})
	}
}

func TestRunApps_TunnelHintBeforeRun(t *testing.T) {
	env := newTestEnv(t)
	client := env.connector.AddHost("host1")
	client.SetCommandResponse(`^docker inspect`, sshtesting.CommandResponse{Stdout: []byte("172.18.0.4\n")})
	env.console.prompts = []string{"80", "8080"}

	// One buffer for both streams so the order is visible.
	var out bytes.Buffer
	env.w.Stdout = &out
	env.w.Stderr = &out

	err := env.run(AppsOptions{
		Host:    "host1",
		AppName: "app-a",
		Kind:    operation.KindTunnel,
		DryRun:  true,
		Tunnel:  operation.TunnelParams{ContainerName: "app-a-web-1"},
	})
	require.NoError(t, err)

	text := ansi.Strip(out.String())
	hint := strings.Index(text,
		"rpio apps --host host1 --app-name app-a tunnel --container-name app-a-web-1 --host-port 8080 --remote-port 80")
	cmd := strings.Index(text, "ssh -N -L 8080:172.18.0.4:80 host1")
	require.GreaterOrEqual(t, hint, 0, text)
	require.GreaterOrEqual(t, cmd, 0, text)
	assert.Less(t, hint, cmd)
	assert.Len(t, env.console.promptTitles, 2)
}

func TestRunApps_TunnelFullyGivenNoHint(t *testing.T) {
	env := newTestEnv(t)
	client := env.connector.AddHost("host1")
	client.SetCommandResponse(`^docker inspect`, sshtesting.CommandResponse{Stdout: []byte("172.18.0.4\n")})

	err := env.run(AppsOptions{
		Host:    "host1",
		AppName: "app-a",
		Kind:    operation.KindTunnel,
		DryRun:  true,
		Tunnel:  operation.TunnelParams{ContainerName: "app-a-web-1", RemotePort: 80, LocalPort: 8080},
	})

	require.NoError(t, err)
	assert.NotContains(t, env.stderr.String(), hintLabel)
	for _, cmd := range client.Commands() {
		assert.NotContains(t, cmd, "docker compose ps")
	}
}

func TestRunApps_NoContainers(t *testing.T) {
	env := newTestEnv(t)
	env.connector.AddHost("host1")

	err := env.run(AppsOptions{Host: "host1", AppName: "app-a", Kind: operation.KindTunnel})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrResolve))
	assert.False(t, errors.IsCode(err, errors.ErrSSH))
	assert.Equal(t, operation.ParamContainerName, operation.ParamError(err))
	assert.NotContains(t, env.stderr.String(), hintLabel)
}

func TestRunApps_HalfGivenNarrowsPicker(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	env.console.picks = []string{"shop:host2"}

	err := env.run(AppsOptions{Host: "host2", Kind: operation.KindSSHSession, DryRun: true})

	require.NoError(t, err)
	require.Len(t, env.console.pickLines, 1)
	assert.Len(t, env.console.pickLines[0], 1)
	assert.Equal(t, "ssh -t host2 'cd '\\''/data/shop'\\'' ; bash --login'\n", env.stdout.String())
}

func TestRunApps_EmptyInventory(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.w.snapshot().Save(inventory.NewStore()))

	err := env.run(AppsOptions{Kind: operation.KindSSHSession})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInventory))
	assert.Contains(t, err.Error(), "No folders found")
	assert.Empty(t, env.console.pickTitles)
}

func TestRunApps_NoMatchingApplication(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	err := env.run(AppsOptions{AppName: "missing", Kind: operation.KindSSHSession})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInventory))
	assert.Contains(t, err.Error(), "application missing")
}

func TestRunApps_RefreshDryRunDoesNotSave(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.w.Config.SSHConfig, []byte("Host host1\n  HostName 10.0.0.1\n"), 0o600))
	sshtesting.WithApps(env.connector.AddHost("host1"), "/data", "app-a", "app-b")
	env.console.picks = []string{"app-b:host1"}

	err := env.run(AppsOptions{Refresh: true, DryRun: true, Kind: operation.KindSSHSession})

	require.NoError(t, err)
	assert.Equal(t, []string{"app-a:host1", "app-b:host1"}, stripAll(env.console.pickLines[0]))
	assert.False(t, env.w.snapshot().Exists())
	assert.Contains(t, env.stdout.String(), "/data/app-b")
}

func TestRunApps_RefreshWithIdentitySaves(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.w.Config.SSHConfig, []byte("Host host1\n"), 0o600))
	client := env.connector.AddHost("host1")
	sshtesting.WithApps(client, "/data", "app-a")
	client.SetCommandResponse(`docker compose config`, sshtesting.CommandResponse{Stdout: []byte(hostedCompose)})

	err := env.run(AppsOptions{Refresh: true, Host: "host1", AppName: "app-a", Kind: operation.KindHostedURL})

	require.NoError(t, err)
	store := env.w.snapshot().Load()
	assert.Equal(t, 1, store.FolderCount())
	assert.Empty(t, env.console.pickTitles)
	assert.Equal(t, "https://app-a.example.org\n", env.stdout.String())
}

func TestFilterCandidates(t *testing.T) {
	sel := selector.New()
	lines := []string{"app-a:host1", "app-b:host1", "shop:host2", "garbage"}

	tests := []struct {
		name string
		want remote.Identity
		kept []string
	}{
		{"nothing given", remote.Identity{}, lines},
		{"host", remote.Identity{Host: "host1"}, []string{"app-a:host1", "app-b:host1"}},
		{"application", remote.Identity{AppName: "shop"}, []string{"shop:host2"}},
		{"no match", remote.Identity{Host: "host3"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kept, filterCandidates(sel, lines, tt.want))
		})
	}
}

func TestValidatePortFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"not given", nil, false},
		{"valid", []string{"--remote-port", "80", "--host-port", "8080"}, false},
		{"zero", []string{"--host-port", "0"}, true},
		{"too large", []string{"--remote-port", "70000"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var params operation.TunnelParams
			cmd := &cobra.Command{Use: "tunnel"}
			cmd.Flags().IntVar(&params.RemotePort, operation.ParamRemotePort, 0, "")
			cmd.Flags().IntVar(&params.LocalPort, operation.ParamLocalPort, 0, "")
			require.NoError(t, cmd.Flags().Parse(tt.args))

			err := validatePortFlags(cmd)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAppsCommandTree(t *testing.T) {
	for _, kind := range operation.Kinds {
		cmd, _, err := rootCmd.Find([]string{"apps", string(kind)})
		require.NoError(t, err)
		assert.Equal(t, string(kind), cmd.Name())
	}

	tunnel, _, err := rootCmd.Find([]string{"apps", "tunnel"})
	require.NoError(t, err)
	for _, name := range []string{"container-name", "remote-port", "host-port", "host", "app-name", "refresh", "dry-run"} {
		assert.NotNil(t, tunnel.Flag(name), name)
	}
}

func stripAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = ansi.Strip(l)
	}
	return out
}
