package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/config"
	"github.com/agbru/bigcalc/internal/expr"
)

func TestGetCalculatorsToRun(t *testing.T) {
	t.Parallel()
	factory := calculator.NewDefaultFactory()

	tests := []struct {
		backend string
		want    []string
	}{
		{"all", []string{"mathbig", "native"}},
		{"native", []string{"native"}},
		{"unknown", nil},
	}
	for _, tt := range tests {
		calcs := GetCalculatorsToRun(config.AppConfig{Backend: tt.backend}, factory)
		var names []string
		for _, c := range calcs {
			names = append(names, c.Name())
		}
		if strings.Join(names, ",") != strings.Join(tt.want, ",") {
			t.Errorf("backend %q: got %v, want %v", tt.backend, names, tt.want)
		}
	}
}

func TestPrintExecutionConfig(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg := config.AppConfig{Timeout: time.Minute, MaxBits: 4096}
	PrintExecutionConfig(cfg, expr.MustParse("x + y * 2"), &buf)

	out := buf.String()
	for _, want := range []string{"Evaluating (x + (y * 2)) with a timeout of 1m0s", "Variables: x, y.", "4,096 bits, 5 nodes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintExecutionMode(t *testing.T) {
	t.Parallel()
	factory := calculator.NewDefaultFactory()

	var single bytes.Buffer
	PrintExecutionMode([]calculator.Calculator{factory.MustGet("native")}, &single)
	if !strings.Contains(single.String(), "Single evaluation with the native backend") {
		t.Errorf("single mode output: %s", single.String())
	}

	var all bytes.Buffer
	PrintExecutionMode(GetCalculatorsToRun(config.AppConfig{Backend: "all"}, factory), &all)
	if !strings.Contains(all.String(), "Parallel comparison") {
		t.Errorf("comparison mode output: %s", all.String())
	}
}
