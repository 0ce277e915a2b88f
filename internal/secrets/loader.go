// Package secrets resolves API keys from the places a deployment may put
// them: a key file named in configuration, or an environment variable.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret may come from. A key file takes precedence
// over the environment variable; at least one must yield a non-empty value.
type Source struct {
	// Name identifies the secret in error messages.
	Name string
	// Env is the environment variable holding an inline value.
	Env string
	// File is a path to a file holding the value. Takes precedence over Env.
	File string
	// FileKey is the configuration key that points at File; named in the
	// not-configured error so the hint matches the caller's config surface.
	FileKey string
}

// Load resolves the secret from the source. The returned value is always
// trimmed. The not-configured error spells out which config key or
// environment variable would fix it.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	return "", fmt.Errorf("%s is not configured%s", name, hint(src))
}

func hint(src Source) string {
	options := make([]string, 0, 2)
	if key := strings.TrimSpace(src.FileKey); key != "" {
		options = append(options, key)
	}
	if env := strings.TrimSpace(src.Env); env != "" {
		options = append(options, env)
	}
	if len(options) == 0 {
		return ""
	}
	return " (set " + strings.Join(options, " or ") + ")"
}
