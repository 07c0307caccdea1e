// Package flagx lets several independent flag sets share one command line.
// Each consumer extracts only the flags it owns and parses them in isolation,
// so an unknown flag meant for another layer never aborts parsing.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belong to the named flags,
// together with their values.
//
// Both "-name value" and "-name=value" forms are understood; "--name" is
// treated as "-name". A token following a bare flag is taken as its value
// unless it itself starts with '-'.
func FilterArgs(args []string, names []string) []string {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[normalize(n)] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		if !owned[normalize(name)] {
			continue
		}
		out = append(out, arg)
		if hasValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

func normalize(name string) string {
	if strings.HasPrefix(name, "--") {
		return name[1:]
	}
	return name
}

// ConfigPath extracts the config file path given via -c or -config.
// It returns "" when neither flag is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
