package common

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadEnvFile seeds the process environment from a gateway .env file so that
// gatewayctl subcommands resolve the same configuration the running service
// does. Real environment variables win over file entries, and a missing file
// is not an error: production deployments configure through the environment
// alone and carry no .env.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		entry := strings.TrimSpace(scanner.Text())
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		// Files written for `source` still load here.
		entry = strings.TrimPrefix(entry, "export ")
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			return fmt.Errorf("env file %s line %d: expected KEY=VALUE", path, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("set %s from env file: %w", key, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	return nil
}
