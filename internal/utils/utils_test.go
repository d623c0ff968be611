package utils

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	for level, want := range map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"WARN":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	} {
		if err := SetLogLevel(level); err != nil {
			t.Fatalf("SetLogLevel(%q): %v", level, err)
		}
		if Log.GetLevel() != want {
			t.Fatalf("SetLogLevel(%q) set %v, want %v", level, Log.GetLevel(), want)
		}
	}

	if err := SetLogLevel("loud"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestDBLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snap.sqlite")
	lock, err := NewDBLock(dbPath)
	if err != nil {
		t.Fatalf("NewDBLock: %v", err)
	}
	if err := lock.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	def, err := GetAbsDBPath("")
	if err != nil {
		t.Fatalf("GetAbsDBPath: %v", err)
	}
	if filepath.Base(def) != "soulink.sqlite" {
		t.Fatalf("default db path = %q", def)
	}
}
