package loader_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/wippyai/jclass/loader"
)

func TestLoggerDefaultsToNop(t *testing.T) {
	if loader.Logger() == nil {
		t.Fatal("Logger returned nil")
	}
}

func TestSetLoggerAfterFirstUse(t *testing.T) {
	_ = loader.Logger() // force the default in first

	custom := zap.NewExample()
	loader.SetLogger(custom)
	defer loader.SetLogger(zap.NewNop())

	if loader.Logger() != custom {
		t.Error("SetLogger after first use did not take effect")
	}
}

func TestSetLoggerIgnoresNil(t *testing.T) {
	loader.SetLogger(zap.NewExample())
	defer loader.SetLogger(zap.NewNop())

	loader.SetLogger(nil)
	if loader.Logger() == nil {
		t.Error("nil logger installed")
	}
}
