package testctl

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestEnvStr(t *testing.T) {
	key := "TESTCTL_ENV_STR"
	t.Setenv(key, "")
	if got := envStr(key, "def"); got != "def" {
		t.Fatalf("envStr default: got %q", got)
	}
	t.Setenv(key, "val")
	if got := envStr(key, "def"); got != "val" {
		t.Fatalf("envStr set: got %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	key := "TESTCTL_ENV_BOOL"
	t.Setenv(key, "")
	if got := envBool(key, true); !got {
		t.Fatalf("envBool default true -> false")
	}
	if got := envBool(key, false); got {
		t.Fatalf("envBool default false -> true")
	}
	for _, v := range []string{"1", "true", "yes", "TRUE"} {
		t.Setenv(key, v)
		if got := envBool(key, false); !got {
			t.Fatalf("envBool %s -> false", v)
		}
	}
	t.Setenv(key, "no")
	if got := envBool(key, true); got {
		t.Fatalf("envBool no -> true")
	}
}

func TestEnvInt(t *testing.T) {
	key := "TESTCTL_ENV_INT"
	t.Setenv(key, "")
	if got := envInt(key, 7); got != 7 {
		t.Fatalf("envInt default -> %d", got)
	}
	t.Setenv(key, "42")
	if got := envInt(key, 0); got != 42 {
		t.Fatalf("envInt 42 -> %d", got)
	}
	t.Setenv(key, "bad")
	if got := envInt(key, 5); got != 5 {
		t.Fatalf("envInt bad -> %d", got)
	}
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogLevel("info")
	cases := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"WARNING":  zerolog.WarnLevel,
		"err":      zerolog.ErrorLevel,
		"nonsense": zerolog.InfoLevel,
	}
	for in, want := range cases {
		SetLogLevel(in)
		if got := log.GetLevel(); got != want {
			t.Fatalf("SetLogLevel(%q) -> %v, want %v", in, got, want)
		}
	}
}
