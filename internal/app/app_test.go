package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/cli"
	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/testutil"
)

func TestMain(m *testing.M) {
	stdoutIsTerminal = func() bool { return false }
	os.Exit(m.Run())
}

func newTestApp(cfg config.AppConfig) (*Application, *bytes.Buffer) {
	if cfg.Backend == "" {
		cfg.Backend = "native"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.MaxBits == 0 {
		cfg.MaxBits = config.DefaultMaxBits
	}
	cfg.NoColor = true
	cfg.LogLevel = "error"
	errBuf := &bytes.Buffer{}
	return &Application{
		Config:    cfg,
		Factory:   calculator.NewDefaultFactory(),
		ErrWriter: errBuf,
	}, errBuf
}

func TestNew(t *testing.T) {
	t.Run("Flag expression", func(t *testing.T) {
		app, err := New([]string{"bigcalc", "-e", "1 + 1", "-backend", "native"}, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if app.Config.Expr != "1 + 1" || app.Config.Backend != "native" {
			t.Errorf("config = %+v", app.Config)
		}
		if app.Factory == nil || app.In == nil {
			t.Error("factory or input not set")
		}
	})

	t.Run("Positional expression", func(t *testing.T) {
		app, err := New([]string{"bigcalc", "fib(10)", "*", "2"}, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if app.Config.Expr != "fib(10) * 2" {
			t.Errorf("Expr = %q", app.Config.Expr)
		}
	})

	t.Run("Help", func(t *testing.T) {
		_, err := New([]string{"bigcalc", "-h"}, &bytes.Buffer{})
		if !IsHelpError(err) {
			t.Errorf("err = %v, want flag.ErrHelp", err)
		}
	})

	t.Run("Invalid backend", func(t *testing.T) {
		var errBuf bytes.Buffer
		_, err := New([]string{"bigcalc", "-backend", "abacus", "1"}, &errBuf)
		if err == nil || IsHelpError(err) {
			t.Fatalf("err = %v, want a configuration error", err)
		}
		if !strings.Contains(errBuf.String(), "abacus") {
			t.Errorf("diagnostic does not name the backend: %q", errBuf.String())
		}
	})

	t.Run("Missing expression", func(t *testing.T) {
		if _, err := New([]string{"bigcalc"}, &bytes.Buffer{}); err == nil {
			t.Error("expected an error without an expression")
		}
	})
}

func TestRunCalculate(t *testing.T) {
	t.Run("Single backend", func(t *testing.T) {
		app, _ := newTestApp(config.AppConfig{Expr: "fib(20)"})
		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d, output:\n%s", code, out.String())
		}
		output := testutil.StripAnsiCodes(out.String())
		for _, want := range []string{"Execution Configuration", "Single evaluation with the native backend", "fib(20) = 6,765"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("All backends", func(t *testing.T) {
		app, _ := newTestApp(config.AppConfig{Expr: "pow(3, 40) - 1", Backend: config.DefaultBackend, Details: true})
		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d, output:\n%s", code, out.String())
		}
		output := testutil.StripAnsiCodes(out.String())
		for _, want := range []string{"Parallel comparison", "Comparison Summary", "mathbig", "native", "Global Status: Success", "12,157,665,459,056,928,800"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("Quiet", func(t *testing.T) {
		app, _ := newTestApp(config.AppConfig{Expr: "-(1 << 70)", Quiet: true})
		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		if got := out.String(); got != "-1180591620717411303424\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		app, _ := newTestApp(config.AppConfig{Expr: "gcd(84, -36)", Backend: config.DefaultBackend, JSONOutput: true})
		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		var records []cli.ResultRecord
		if err := json.Unmarshal(out.Bytes(), &records); err != nil {
			t.Fatalf("invalid JSON %q: %v", out.String(), err)
		}
		if len(records) < 2 {
			t.Fatalf("records = %+v", records)
		}
		for _, r := range records {
			if r.Value != "12" || r.Error != "" {
				t.Errorf("record = %+v", r)
			}
		}
	})

	t.Run("Output file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "result.txt")
		app, _ := newTestApp(config.AppConfig{Expr: "fact(25)", OutputFile: path})
		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("result file: %v", err)
		}
		if !strings.HasSuffix(string(data), "\n15511210043330985984000000\n") {
			t.Errorf("file content = %q", data)
		}
		if !strings.Contains(testutil.StripAnsiCodes(out.String()), "Result saved to") {
			t.Error("missing save confirmation")
		}
	})
}

func TestRunCalculateErrors(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		ctx      func() (context.Context, context.CancelFunc)
		wantCode int
		wantMsg  string
	}{
		{
			name:     "Syntax error",
			expr:     "2 +* 3",
			wantCode: apperrors.ExitErrorInput,
			wantMsg:  "Invalid expression",
		},
		{
			name:     "Division by zero",
			expr:     "10 % (5 - 5)",
			wantCode: apperrors.ExitErrorInput,
			wantMsg:  "division by zero",
		},
		{
			name: "Deadline passed",
			expr: "1 + 1",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
			},
			wantCode: apperrors.ExitErrorTimeout,
			wantMsg:  "Timeout",
		},
		{
			name: "Canceled",
			expr: "1 + 1",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			wantCode: apperrors.ExitErrorCanceled,
			wantMsg:  "Canceled",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.Background(), context.CancelFunc(func() {})
			if tt.ctx != nil {
				ctx, cancel = tt.ctx()
			}
			defer cancel()

			app, errBuf := newTestApp(config.AppConfig{Expr: tt.expr})
			var out bytes.Buffer
			code := app.Run(ctx, &out)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nout: %s\nerr: %s", code, tt.wantCode, out.String(), errBuf.String())
			}
			combined := testutil.StripAnsiCodes(out.String() + errBuf.String())
			if !strings.Contains(combined, tt.wantMsg) {
				t.Errorf("output missing %q:\n%s", tt.wantMsg, combined)
			}
		})
	}
}

func TestRunCalculateSyntaxErrorJSON(t *testing.T) {
	app, _ := newTestApp(config.AppConfig{Expr: "fib(", JSONOutput: true})
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorInput {
		t.Fatalf("exit code = %d", code)
	}
	var records []cli.ResultRecord
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if len(records) != 1 || !strings.Contains(records[0].Error, "syntax error") {
		t.Errorf("records = %+v", records)
	}
}

func TestRunVersion(t *testing.T) {
	app, _ := newTestApp(config.AppConfig{ShowVersion: true})
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(out.String(), "bigcalc ") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunCompletion(t *testing.T) {
	app, _ := newTestApp(config.AppConfig{Completion: "bash"})
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "mathbig") {
		t.Errorf("completion script does not list backends:\n%s", out.String())
	}
}

func TestRunCompletionInvalid(t *testing.T) {
	app, errBuf := newTestApp(config.AppConfig{Completion: "tcsh"})
	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorConfig {
		t.Fatalf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
	}
	if !strings.Contains(errBuf.String(), "Error generating completion") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestRunREPL(t *testing.T) {
	app, _ := newTestApp(config.AppConfig{Interactive: true})
	app.In = strings.NewReader("x = 6 * 7\nx + 1\nexit\n")
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	output := testutil.StripAnsiCodes(out.String())
	for _, want := range []string{"x = 42", "ans = 43", "[native, "} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRunServer(t *testing.T) {
	app, errBuf := newTestApp(config.AppConfig{ServerMode: true, Port: "0", MaxExprLength: 64})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan int, 1)
	go func() { done <- app.Run(ctx, &bytes.Buffer{}) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		if code != apperrors.ExitSuccess {
			t.Errorf("exit code = %d, stderr: %s", code, errBuf.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestSetupLifecycle(t *testing.T) {
	ctx, funcs := SetupLifecycle(context.Background(), 0)
	if _, ok := ctx.Deadline(); ok {
		t.Error("zero timeout set a deadline")
	}
	funcs.Cleanup()
	if ctx.Err() == nil {
		t.Error("context not canceled after Cleanup")
	}

	ctx, funcs = SetupLifecycle(context.Background(), time.Hour)
	defer funcs.Cleanup()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("timeout did not set a deadline")
	}
}
