package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPluginFilenamesPerPlatform(t *testing.T) {
	tests := []struct {
		goos string
		want []string
	}{
		{"linux", []string{"liblymons_ssd1306.so", "liblymons-ssd1306.so"}},
		{"darwin", []string{"liblymons_ssd1306.dylib", "liblymons-ssd1306.dylib"}},
		{"windows", []string{"lymons_ssd1306.dll", "lymons-ssd1306.dll"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got := pluginFilenames("ssd1306", tt.goos)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("name[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSearchPathsEnvOverrideFirst(t *testing.T) {
	t.Setenv(EnvDriverPath, "/opt/test/drivers")
	paths := SearchPaths()
	if len(paths) == 0 || paths[0] != "/opt/test/drivers" {
		t.Errorf("paths[0] = %v, want env override first", paths)
	}
}

func TestSearchPathsWithoutEnv(t *testing.T) {
	t.Setenv(EnvDriverPath, "")
	paths := SearchPaths()
	if len(paths) == 0 {
		t.Fatal("no search paths")
	}
	if paths[0] != filepath.Join(".", "build", "drivers") {
		t.Errorf("paths[0] = %q, want the development build directory", paths[0])
	}
	last := paths[len(paths)-1]
	if last != filepath.Join("/usr", "lib", "lymons", "drivers") {
		t.Errorf("last path = %q, want the system directory", last)
	}
}

func TestFindPrefersEnvDirectory(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, PluginFilenames("ssd1306")[0])
	if err := os.WriteFile(lib, []byte("not a real library"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDriverPath, dir)

	got, err := Find("ssd1306")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != lib {
		t.Errorf("Find = %q, want %q", got, lib)
	}
}

func TestFindAcceptsHyphenSpelling(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, PluginFilenames("ssd1322")[1])
	if err := os.WriteFile(lib, []byte("not a real library"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDriverPath, dir)

	got, err := Find("ssd1322")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != lib {
		t.Errorf("Find = %q, want %q", got, lib)
	}
}

func TestFindNotFound(t *testing.T) {
	t.Setenv(EnvDriverPath, t.TempDir())

	_, err := Find("nonexistent-driver")
	if !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("err = %v, want ErrPluginNotFound", err)
	}
}
