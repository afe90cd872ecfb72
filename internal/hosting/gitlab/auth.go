package gitlab

import (
	"fmt"
	"os"

	"github.com/treefort-dev/treefort/internal/hosting"
)

// resolveToken gets the GitLab API token from environment.
// Uses cfg.TokenEnvVar if set, otherwise defaults to GITLAB_TOKEN.
func resolveToken(cfg hosting.Config) (string, error) {
	envVar := "GITLAB_TOKEN"
	if cfg.TokenEnvVar != "" {
		envVar = cfg.TokenEnvVar
	}

	token := os.Getenv(envVar)
	if token == "" {
		return "", fmt.Errorf("%s environment variable is not set (required for GitLab API access)", envVar)
	}

	return token, nil
}
