package cli

import (
	"fmt"
	"io"
	"strings"
)

// completionFlag describes one command-line flag for completion scripts.
type completionFlag struct {
	long  string
	short string
	desc  string
	// values are offered after the flag; "<backends>" expands to the
	// registered backend names and "<file>" means file completion.
	values []string
}

var completionFlags = []completionFlag{
	{long: "help", short: "h", desc: "Show help message"},
	{long: "version", desc: "Show version information"},
	{long: "e", desc: "Expression to evaluate"},
	{long: "backend", desc: "Arithmetic backend", values: []string{"<backends>"}},
	{long: "timeout", desc: "Maximum evaluation time", values: []string{"10s", "1m", "5m", "30m"}},
	{long: "max-bits", desc: "Largest intermediate result in bits", values: []string{"65536", "1048576", "16777216"}},
	{long: "max-expr-len", desc: "Longest accepted expression", values: []string{"1024", "4096", "65536"}},
	{long: "verbose", short: "v", desc: "Display the full result value"},
	{long: "details", short: "d", desc: "Show timing and size analysis"},
	{long: "json", desc: "Output results as JSON"},
	{long: "quiet", short: "q", desc: "Print only the value"},
	{long: "no-color", desc: "Disable colored output"},
	{long: "output", short: "o", desc: "Save the result to a file", values: []string{"<file>"}},
	{long: "log-level", desc: "Log level", values: []string{"debug", "info", "warn", "error"}},
	{long: "interactive", desc: "Start the interactive REPL"},
	{long: "server", desc: "Start the HTTP server"},
	{long: "port", desc: "HTTP server port", values: []string{"8080", "3000", "9000"}},
	{long: "completion", desc: "Generate a completion script", values: []string{"bash", "zsh", "fish", "powershell"}},
}

// GenerateCompletion writes a completion script for shell. backends fills
// the choices offered after --backend.
func GenerateCompletion(out io.Writer, shell string, backends []string) error {
	choices := append(append([]string{}, backends...), "all")
	switch shell {
	case "bash":
		return generateBashCompletion(out, choices)
	case "zsh":
		return generateZshCompletion(out, choices)
	case "fish":
		return generateFishCompletion(out, choices)
	case "powershell", "ps":
		return generatePowerShellCompletion(out, choices)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

func (f completionFlag) names() []string {
	names := []string{"--" + f.long}
	if f.short != "" {
		names = append(names, "-"+f.short)
	}
	return names
}

func (f completionFlag) choices(backends []string) []string {
	if len(f.values) == 1 && f.values[0] == "<backends>" {
		return backends
	}
	return f.values
}

func (f completionFlag) isFile() bool {
	return len(f.values) == 1 && f.values[0] == "<file>"
}

func generateBashCompletion(out io.Writer, backends []string) error {
	var opts []string
	var cases strings.Builder
	for _, f := range completionFlags {
		opts = append(opts, f.names()...)
		if len(f.values) == 0 {
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n", strings.Join(f.names(), "|"))
		if f.isFile() {
			cases.WriteString("            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n")
		} else {
			fmt.Fprintf(&cases, "            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(f.choices(backends), " "))
		}
		cases.WriteString("            return 0\n            ;;\n")
	}

	_, err := fmt.Fprintf(out, `# Bash completion script for bigcalc
# Add this to your ~/.bashrc or ~/.bash_completion

_bigcalc_completions() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "%s" -- "${cur}") )
    fi
    return 0
}

complete -F _bigcalc_completions bigcalc
`, cases.String(), strings.Join(opts, " "))
	return err
}

func generateZshCompletion(out io.Writer, backends []string) error {
	var args strings.Builder
	for i, f := range completionFlags {
		spec := "--" + f.long
		if f.short != "" {
			spec = fmt.Sprintf("(-%s --%s)'{-%s,--%s}'", f.short, f.long, f.short, f.long)
		}
		action := ""
		switch {
		case f.isFile():
			action = ":file:_files"
		case len(f.values) > 0:
			action = fmt.Sprintf(":%s:(%s)", f.long, strings.Join(f.choices(backends), " "))
		}
		sep := " \\\n"
		if i == len(completionFlags)-1 {
			sep = "\n"
		}
		fmt.Fprintf(&args, "        '%s[%s]%s'%s", spec, f.desc, action, sep)
	}

	_, err := fmt.Fprintf(out, `#compdef bigcalc

# Zsh completion script for bigcalc
# Place this file in a directory listed in $fpath

_bigcalc() {
    _arguments -s \
%s}

_bigcalc "$@"
`, args.String())
	return err
}

func generateFishCompletion(out io.Writer, backends []string) error {
	var b strings.Builder
	b.WriteString("# Fish completion script for bigcalc\n")
	b.WriteString("# Save as ~/.config/fish/completions/bigcalc.fish\n\n")
	b.WriteString("complete -c bigcalc -f\n")
	for _, f := range completionFlags {
		fmt.Fprintf(&b, "complete -c bigcalc -l %s", f.long)
		if f.short != "" {
			fmt.Fprintf(&b, " -s %s", f.short)
		}
		fmt.Fprintf(&b, " -d '%s'", f.desc)
		switch {
		case f.isFile():
			b.WriteString(" -rF")
		case len(f.values) > 0:
			fmt.Fprintf(&b, " -xa '%s'", strings.Join(f.choices(backends), " "))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func generatePowerShellCompletion(out io.Writer, backends []string) error {
	var options, values strings.Builder
	for _, f := range completionFlags {
		for _, name := range f.names() {
			fmt.Fprintf(&options, "        @{Name = '%s'; Description = '%s' }\n", name, f.desc)
		}
		if len(f.values) == 0 || f.isFile() {
			continue
		}
		quoted := make([]string, 0, len(f.values))
		for _, v := range f.choices(backends) {
			quoted = append(quoted, "'"+v+"'")
		}
		fmt.Fprintf(&values, "        '--%s' { $candidates = @(%s) }\n", f.long, strings.Join(quoted, ", "))
	}

	_, err := fmt.Fprintf(out, `# PowerShell completion script for bigcalc
# Add this to your $PROFILE

Register-ArgumentCompleter -CommandName 'bigcalc' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    $candidates = $null
    switch ($prevElement) {
%s    }
    if ($candidates) {
        $candidates | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, options.String(), values.String())
	return err
}
