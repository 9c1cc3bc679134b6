package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/internal/ui"
)

// setCustomUsage configures the flag set with a colored usage function.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		// Respect NO_COLOR even before app initialization
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}

		out := fs.Output()

		fmt.Fprintf(out, "\n%sbigcalc%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Arbitrary-precision integer calculator.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags] <expression>\n  %s -interactive\n  %s -server\n\n", t.Warning, t.Reset, fs.Name(), fs.Name(), fs.Name())
		fmt.Fprintf(out, "%sFlags:%s\n", t.Warning, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			flagSig := fmt.Sprintf("-%s", f.Name)
			if len(name) > 0 {
				flagSig += " " + name
			}

			fmt.Fprintf(out, "  %s%-25s%s %s", t.Primary, flagSig, t.Reset, usage)

			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})

		fmt.Fprintf(out, "\n%sOperators:%s\n  + - * / %% & | ^ ~ << >> == != < <= > >=   (C precedence, / and %% truncate)\n", t.Warning, t.Reset)
		fmt.Fprintf(out, "\n%sFunctions:%s\n", t.Warning, t.Reset)
		for _, fn := range expr.Functions() {
			fmt.Fprintf(out, "  %s\n", fn)
		}
		fmt.Fprintln(out)
	}
}
