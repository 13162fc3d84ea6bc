package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaflow/pkg/observability"
)

func TestNewLoggerFiltersDebug(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		want  bool
	}{
		{"Info", LogInfo, false},
		{"Debug", LogDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newLogger(&buf, tt.level).Debug("layout pruned", "removed", 2)
			if got := strings.Contains(buf.String(), "layout pruned"); got != tt.want {
				t.Errorf("debug output = %q, want written %v", buf.String(), tt.want)
			}
		})
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	prog.start = prog.start.Add(-1500 * time.Millisecond)

	prog.done("Rebuilt 6 nodes, 1 edges")

	out := buf.String()
	if !strings.Contains(out, "Rebuilt 6 nodes, 1 edges") || !strings.Contains(out, "(1.5") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should yield log.Default")
	}
	l := log.New(io.Discard)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("attached logger not returned")
	}
}

func TestRootCommandAttachesLogger(t *testing.T) {
	e := newEnv(t)
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var got *log.Logger
	root.AddCommand(&cobra.Command{
		Use: "noop",
		RunE: func(cmd *cobra.Command, args []string) error {
			got = loggerFromContext(cmd.Context())
			return nil
		},
	})
	root.SetArgs([]string{"--config", e.config, "noop"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got != c.Logger {
		t.Error("subcommand context should carry the CLI logger")
	}
	if c.cfg().Store.Dir != e.storeDir {
		t.Errorf("config not loaded: store dir %q", c.cfg().Store.Dir)
	}
}

func TestSetLogLevelInstallsHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.SetLogLevel(LogInfo)
	observability.Session().OnEvent(context.Background(), "drag")
	if buf.Len() != 0 {
		t.Fatalf("hooks active at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	observability.Session().OnEvent(context.Background(), "drag")
	if !strings.Contains(buf.String(), "session event") {
		t.Errorf("debug level should log session events, got %q", buf.String())
	}
}

func TestLogHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	installLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))

	ctx := context.Background()
	observability.Build().OnBuildComplete(ctx, 12, 3, time.Millisecond)
	observability.Store().OnPrune(ctx, 2)
	observability.Session().OnEvent(ctx, "drag")

	for _, want := range []string{"build complete", "layout prune", "session event", "hooks"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("hook output missing %q:\n%s", want, buf.String())
		}
	}
}
