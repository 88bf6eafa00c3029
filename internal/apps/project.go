package apps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redpencil/rpio/internal/config"
	"github.com/redpencil/rpio/internal/errors"
	"gopkg.in/yaml.v3"
)

type composeImages struct {
	Services map[string]struct {
		Image string `yaml:"image"`
	} `yaml:"services"`
}

// FindProjectRoot walks up from start to the first directory whose compose
// file has a service running the identifier image. Compose files that
// don't parse are passed over.
func FindProjectRoot(start string, proj config.ProjectConfig) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot determine current directory",
				"Check directory permissions")
		}
		start = wd
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot resolve "+start, "")
	}

	for {
		if usesImage(filepath.Join(dir, proj.ComposeFile), proj.IdentifierImage) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.New(errors.ErrConfig,
		"Could not find an application project in this or any parent directory",
		fmt.Sprintf("Run this from a checkout whose %s has a service using %s.",
			proj.ComposeFile, proj.IdentifierImage))
}

func usesImage(composePath, imagePrefix string) bool {
	data, err := os.ReadFile(composePath)
	if err != nil {
		return false
	}

	var doc composeImages
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}
	for _, svc := range doc.Services {
		if strings.HasPrefix(svc.Image, imagePrefix) {
			return true
		}
	}
	return false
}
