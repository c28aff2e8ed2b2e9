package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvDriverPath is the environment variable that prepends an explicit
// directory to the plugin search path.
const EnvDriverPath = "LYMONS_DRIVER_PATH"

// SearchPaths returns the plugin search directories in priority order:
// the EnvDriverPath override, the development build output, user-local
// directories, then system directories. Non-existent directories are
// kept in the list; Find simply skips them.
func SearchPaths() []string {
	paths := make([]string, 0, 6)

	if p := os.Getenv(EnvDriverPath); p != "" {
		paths = append(paths, p)
	}

	paths = append(paths, filepath.Join(".", "build", "drivers"))

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".local", "lib", "lymons", "drivers"),
			filepath.Join(home, ".lymons", "drivers"),
		)
	}

	paths = append(paths,
		filepath.Join("/usr", "local", "lib", "lymons", "drivers"),
		filepath.Join("/usr", "lib", "lymons", "drivers"),
	)

	return paths
}

// PluginFilenames returns the candidate library filenames for a driver
// type on the current platform. Both underscore and hyphen spellings are
// accepted.
func PluginFilenames(driverType string) []string {
	return pluginFilenames(driverType, runtime.GOOS)
}

func pluginFilenames(driverType, goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			fmt.Sprintf("liblymons_%s.dylib", driverType),
			fmt.Sprintf("liblymons-%s.dylib", driverType),
		}
	case "windows":
		return []string{
			fmt.Sprintf("lymons_%s.dll", driverType),
			fmt.Sprintf("lymons-%s.dll", driverType),
		}
	default:
		return []string{
			fmt.Sprintf("liblymons_%s.so", driverType),
			fmt.Sprintf("liblymons-%s.so", driverType),
		}
	}
}

// Find resolves a driver-type tag to a plugin library path. The first
// existing file wins; there is no fallback directory scan. Returns
// ErrPluginNotFound when no candidate exists anywhere.
func Find(driverType string) (string, error) {
	for _, dir := range SearchPaths() {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		for _, name := range PluginFilenames(driverType) {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: driver type %q", ErrPluginNotFound, driverType)
}
