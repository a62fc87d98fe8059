package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitLogger(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	if err := InitLogger(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Fatal("unknown level accepted")
	}

	path := filepath.Join(t.TempDir(), "app.log")
	if err := InitLogger(path, "info"); err != nil {
		t.Fatal(err)
	}
	Log.Debugw("hidden")
	Log.Infow("session created", "session", "s1")
	SyncLogger()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if !strings.Contains(out, `"msg":"session created"`) || !strings.Contains(out, `"session":"s1"`) {
		t.Fatalf("log file = %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatal("debug entry written at info level")
	}
}
