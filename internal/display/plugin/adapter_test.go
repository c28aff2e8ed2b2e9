package plugin

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shunte88/lymons/internal/display"
)

func newTestAdapter(t *testing.T, fake *fakeState) *Adapter {
	t.Helper()
	lp, err := fake.loaded()
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	a, err := NewAdapter(lp, fakeI2CConfig(), testLogger())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	return a
}

func TestAdapterCreateCachesCapabilities(t *testing.T) {
	fake := newFakeState()
	a := newTestAdapter(t, fake)

	caps := a.Capabilities()
	if caps.Width != 128 || caps.Height != 64 {
		t.Errorf("caps = %dx%d, want 128x64", caps.Width, caps.Height)
	}
	if caps.ColorDepth != display.Monochrome {
		t.Errorf("depth = %v, want monochrome", caps.ColorDepth)
	}

	// Repeated queries answer from the cache; the table sees one call.
	a.Capabilities()
	a.Capabilities()
	if fake.calls["capabilities"] != 1 {
		t.Errorf("capabilities called %d times, want 1", fake.calls["capabilities"])
	}
}

func TestAdapterCreateFailure(t *testing.T) {
	fake := newFakeState()
	fake.failCodes["create"] = CodeInitialization

	lp, err := fake.loaded()
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewAdapter(lp, fakeI2CConfig(), testLogger())
	if !errors.Is(err, display.ErrInitialization) {
		t.Errorf("err = %v, want ErrInitialization", err)
	}
}

func TestAdapterCreatePanicContained(t *testing.T) {
	fake := newFakeState()
	fake.panicOps["create"] = true

	lp, err := fake.loaded()
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewAdapter(lp, fakeI2CConfig(), testLogger())
	if !errors.Is(err, display.ErrPluginPanic) {
		t.Errorf("err = %v, want ErrPluginPanic", err)
	}
}

func TestAdapterCapabilitiesFailureReleasesHandle(t *testing.T) {
	fake := newFakeState()
	fake.failCodes["capabilities"] = CodeCommunication

	lp, err := fake.loaded()
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewAdapter(lp, fakeI2CConfig(), testLogger())
	if !errors.Is(err, display.ErrCommunication) {
		t.Errorf("err = %v, want ErrCommunication", err)
	}
	if fake.calls["destroy"] != 1 {
		t.Errorf("destroy called %d times, want 1 (no leaked handle)", fake.calls["destroy"])
	}
}

func TestAdapterWriteBufferRoundTrip(t *testing.T) {
	fake := newFakeState()
	a := newTestAdapter(t, fake)

	buf := make([]byte, a.Capabilities().ExpectedBufferLen())
	buf[0] = 0xAB
	if err := a.WriteBuffer(buf); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}
	if !bytes.Equal(fake.lastWrite, buf) {
		t.Error("buffer did not cross the boundary intact")
	}
}

func TestAdapterWriteBufferRejectsWrongLength(t *testing.T) {
	fake := newFakeState()
	a := newTestAdapter(t, fake)

	err := a.WriteBuffer(make([]byte, 1056))

	var sizeErr *display.BufferSizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("err = %v, want BufferSizeError", err)
	}
	if sizeErr.Expected != 1024 || sizeErr.Actual != 1056 {
		t.Errorf("got %d/%d, want 1024/1056", sizeErr.Expected, sizeErr.Actual)
	}
	// Rejected before crossing the boundary.
	if fake.calls["write_buffer"] != 0 {
		t.Error("oversized buffer reached the plugin")
	}
}

func TestAdapterFlushPanicContained(t *testing.T) {
	fake := newFakeState()
	a := newTestAdapter(t, fake)
	fake.panicOps["flush"] = true

	err := a.Flush()
	if !errors.Is(err, display.ErrPluginPanic) {
		t.Errorf("err = %v, want ErrPluginPanic", err)
	}
}

func TestAdapterErrorCodeTranslation(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want error
	}{
		{CodeUnsupportedOperation, display.ErrUnsupportedOperation},
		{CodeCommunication, display.ErrCommunication},
		{CodeInitialization, display.ErrInitialization},
		{CodeInvalidArgument, display.ErrInvalidArgument},
		{CodeNullPointer, display.ErrInvalidArgument},
		{CodePanic, display.ErrPluginPanic},
		{CodeABIMismatch, ErrABIIncompatible},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			fake := newFakeState()
			a := newTestAdapter(t, fake)
			fake.failCodes["init"] = tt.code

			if err := a.Init(); !errors.Is(err, tt.want) {
				t.Errorf("Init() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAdapterUnsupportedRotationShortCircuits(t *testing.T) {
	fake := newFakeState() // SupportsRotation false
	a := newTestAdapter(t, fake)

	if err := a.SetRotation(90); !errors.Is(err, display.ErrUnsupportedOperation) {
		t.Errorf("err = %v, want ErrUnsupportedOperation", err)
	}
	if fake.calls["set_rotation"] != 0 {
		t.Error("unsupported rotation reached the plugin")
	}
}

func TestAdapterInvalidRotationAngle(t *testing.T) {
	fake := newFakeState()
	fake.caps.SupportsRotation = true
	a := newTestAdapter(t, fake)

	err := a.SetRotation(45)
	var rotErr *display.RotationError
	if !errors.As(err, &rotErr) || rotErr.Degrees != 45 {
		t.Errorf("err = %v, want RotationError{45}", err)
	}
	if fake.calls["set_rotation"] != 0 {
		t.Error("invalid angle reached the plugin")
	}

	if err := a.SetRotation(180); err != nil {
		t.Errorf("valid rotation: %v", err)
	}
	if fake.calls["set_rotation"] != 1 {
		t.Errorf("set_rotation called %d times, want 1", fake.calls["set_rotation"])
	}
}

func TestAdapterCloseIdempotent(t *testing.T) {
	fake := newFakeState()
	a := newTestAdapter(t, fake)

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if fake.calls["destroy"] != 1 {
		t.Errorf("destroy called %d times, want exactly 1", fake.calls["destroy"])
	}
}

func TestAdapterRejectsUseAfterClose(t *testing.T) {
	fake := newFakeState()
	a := newTestAdapter(t, fake)
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	calls := map[string]error{
		"Init":          a.Init(),
		"Flush":         a.Flush(),
		"Clear":         a.Clear(),
		"SetBrightness": a.SetBrightness(10),
		"SetInvert":     a.SetInvert(true),
		"WriteBuffer":   a.WriteBuffer(make([]byte, 1024)),
	}
	for op, err := range calls {
		if !errors.Is(err, display.ErrDriverDestroyed) {
			t.Errorf("%s after Close = %v, want ErrDriverDestroyed", op, err)
		}
	}
	if fake.calls["flush"] != 0 || fake.calls["write_buffer"] != 0 {
		t.Error("post-close calls reached the plugin")
	}
}

func TestAdapterClosePanicContained(t *testing.T) {
	fake := newFakeState()
	a := newTestAdapter(t, fake)
	fake.panicOps["destroy"] = true

	if err := a.Close(); err != nil {
		t.Errorf("Close = %v, want nil even when destroy faults", err)
	}
}
