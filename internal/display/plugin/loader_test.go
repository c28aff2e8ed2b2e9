package plugin

import (
	"errors"
	"testing"
)

func TestLoaderBindMetadata(t *testing.T) {
	fake := newFakeState()
	lp, err := fake.loaded()
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	meta := lp.Metadata()
	if meta.Name != "Fake SSD1306 Driver" {
		t.Errorf("Name = %q", meta.Name)
	}
	if meta.Version != "1.2.0" {
		t.Errorf("Version = %q", meta.Version)
	}
	if meta.DriverType != "ssd1306" {
		t.Errorf("DriverType = %q", meta.DriverType)
	}
	if meta.ABI != HostVersion() {
		t.Errorf("ABI = %v, want host version", meta.ABI)
	}
	if lp.Table() == nil {
		t.Error("Table() = nil")
	}
}

func TestLoaderBindRejectsMajorMismatch(t *testing.T) {
	fake := newFakeState()
	fake.abi = Version{Major: 2, Minor: 0, Patch: 0}

	_, err := fake.loaded()
	if !errors.Is(err, ErrABIIncompatible) {
		t.Fatalf("err = %v, want ErrABIIncompatible", err)
	}

	var abiErr *ABIError
	if !errors.As(err, &abiErr) {
		t.Fatal("want typed ABIError")
	}
	if abiErr.Plugin.Major != 2 {
		t.Errorf("Plugin.Major = %d, want 2", abiErr.Plugin.Major)
	}

	// Negotiation stops at the version check: no metadata query, no
	// other entry point.
	if fake.calls["plugin_info"] != 0 {
		t.Error("PluginInfo called after ABI rejection")
	}
	if fake.calls["create"] != 0 {
		t.Error("Create called after ABI rejection")
	}
}

func TestLoaderBindAcceptsNewerMinor(t *testing.T) {
	fake := newFakeState()
	fake.abi = Version{Major: ABIVersionMajor, Minor: ABIVersionMinor + 2, Patch: 0}

	lp, err := fake.loaded()
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if lp.Metadata().ABI.Minor != ABIVersionMinor+2 {
		t.Errorf("ABI.Minor = %d", lp.Metadata().ABI.Minor)
	}
}

func TestLoaderBindContainsVersionPanic(t *testing.T) {
	fake := newFakeState()
	fake.panicOps["abi_version"] = true

	_, err := fake.loaded()
	if !errors.Is(err, ErrRegistrationFailed) {
		t.Errorf("err = %v, want ErrRegistrationFailed", err)
	}
}

func TestLoaderBindContainsInfoPanic(t *testing.T) {
	fake := newFakeState()
	fake.panicOps["plugin_info"] = true

	_, err := fake.loaded()
	if !errors.Is(err, ErrRegistrationFailed) {
		t.Errorf("err = %v, want ErrRegistrationFailed", err)
	}
}

func TestLoaderLoadMissingFile(t *testing.T) {
	_, err := NewLoader(testLogger()).Load("/nonexistent/liblymons_test.so")
	if !errors.Is(err, ErrOpenFailed) {
		t.Errorf("err = %v, want ErrOpenFailed", err)
	}
}

func TestLoaderLoadByDriverTypeNotFound(t *testing.T) {
	t.Setenv(EnvDriverPath, t.TempDir())

	_, err := NewLoader(testLogger()).LoadByDriverType("no-such-driver")
	if !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("err = %v, want ErrPluginNotFound", err)
	}
}
