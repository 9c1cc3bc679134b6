// Package app wires configuration, logging and the execution modes of the
// bigcalc command: one-shot evaluation, the REPL, the HTTP server and shell
// completion.
package app

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Build-time variables set via -ldflags, for example:
//
//	go build -ldflags="-X github.com/agbru/bigcalc/internal/app.Version=v1.2.3 -X github.com/agbru/bigcalc/internal/app.Commit=abc123"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether any argument asks for the version, so that
// "bigcalc -server --version" works in any position.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-V" {
			return true
		}
	}
	return false
}

// PrintVersion writes version, build and platform information to out.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "bigcalc %s\n", Version)
	fmt.Fprintf(out, "  Commit:     %s\n", Commit)
	fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "  CPU:        %s\n", strings.Join(cpuFeatures(), " "))
}

// VersionData is the machine-readable form of PrintVersion.
type VersionData struct {
	Version     string   `json:"version"`
	Commit      string   `json:"commit"`
	BuildDate   string   `json:"build_date"`
	GoVersion   string   `json:"go_version"`
	OS          string   `json:"os"`
	Arch        string   `json:"arch"`
	CPUFeatures []string `json:"cpu_features"`
}

func GetVersionInfo() VersionData {
	return VersionData{
		Version:     Version,
		Commit:      Commit,
		BuildDate:   BuildDate,
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		CPUFeatures: cpuFeatures(),
	}
}

// cpuFeatures lists the instruction set extensions that speed up
// multi-word arithmetic, or "generic" when none is detected.
func cpuFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	add(cpu.X86.HasADX, "adx")
	add(cpu.X86.HasBMI2, "bmi2")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasSVE, "sve")
	if len(features) == 0 {
		return []string{"generic"}
	}
	return features
}
