package remote

import (
	"fmt"
	"strings"

	"github.com/redpencil/rpio/internal/errors"
	"gopkg.in/yaml.v3"
)

// composeConfig is the slice of `docker compose config` output rpio reads.
type composeConfig struct {
	Services map[string]struct {
		Environment yaml.Node `yaml:"environment"`
	} `yaml:"services"`
}

// HostedURL returns https://<value> for the environment variable key of the
// given compose service. ok is false when the service or variable is absent.
func (t *Target) HostedURL(service, key string) (string, bool, error) {
	dump, err := t.DumpServiceConfig()
	if err != nil {
		return "", false, err
	}

	value, ok, err := LookupServiceEnv([]byte(dump), service, key)
	if err != nil || !ok {
		return "", ok, err
	}
	return "https://" + value, true, nil
}

// LookupServiceEnv reads services.<service>.environment.<key> from a compose
// document. The environment may be a mapping or a list of KEY=VALUE strings.
func LookupServiceEnv(doc []byte, service, key string) (string, bool, error) {
	var cfg composeConfig
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return "", false, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't parse the compose config", "")
	}

	svc, ok := cfg.Services[service]
	if !ok {
		return "", false, nil
	}

	env := svc.Environment
	switch env.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(env.Content); i += 2 {
			if env.Content[i].Value != key {
				continue
			}
			// A declared but unset variable is rendered as null.
			v := env.Content[i+1]
			if v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
				return "", false, nil
			}
			return v.Value, true, nil
		}
	case yaml.SequenceNode:
		for _, item := range env.Content {
			if k, v, found := strings.Cut(item.Value, "="); found && k == key {
				return v, true, nil
			}
		}
	case 0, yaml.ScalarNode:
		// absent or null
	default:
		return "", false, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unexpected environment format for service %s", service), "")
	}
	return "", false, nil
}
