// Package flagx selects a component's own flags out of a shared argv. The
// tchat binary can run the server and the client in one process (host mode),
// so each component parses only the flags it declares and ignores the rest.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// Select returns the arguments from args that belong to the given flag
// names, in their original order. Both "-p 9000" and "--port=9000" forms are
// recognized; for the separated form the following value argument is kept as
// well, unless it looks like another flag.
func Select(args []string, names []string) []string {
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") {
			if name, _, ok := strings.Cut(arg, "="); ok {
				if _, found := known[name]; found {
					out = append(out, arg)
				}
				continue
			}
		}

		if _, found := known[arg]; found {
			out = append(out, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				out = append(out, args[i+1])
				i++
			}
		}
	}
	return out
}

// Positionals returns the arguments that are neither flags nor values of
// the named value-taking flags. The mode word and bare host/port arguments
// survive this filter.
func Positionals(args []string, valueFlags []string) []string {
	takesValue := make(map[string]struct{}, len(valueFlags))
	for _, n := range valueFlags {
		takesValue[n] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if strings.Contains(arg, "=") {
				continue
			}
			if _, found := takesValue[arg]; found && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}

// ConfigFilePath extracts the JSON config file path given via -c or -config.
// It returns "" when neither flag is present. Other flags in os.Args are
// ignored so this is safe to call before any component parses its own set.
func ConfigFilePath() string {
	var path string

	args := Select(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("configfile", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(args)

	return path
}
