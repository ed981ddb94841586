// Package flagx lets several components share one command line: each one
// picks out the flags it defines and ignores the rest.
package flagx

import (
	"flag"
	"strings"
)

// splitFlag returns the bare name of a "-name", "--name", "-name=v" or
// "--name=v" argument, its inline value and whether the argument is a flag.
func splitFlag(arg string) (name, value string, inline, ok bool) {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return "", "", false, false
	}
	name = strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if name == "" || name[0] == '-' || name[0] == '=' {
		return "", "", false, false
	}
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], name[i+1:], true, true
	}
	return name, "", false, true
}

func filter(args []string, allowed func(string) bool, isBool func(string) bool) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name, _, inline, ok := splitFlag(arg)
		if !ok || !allowed(name) {
			continue
		}
		out = append(out, arg)
		if inline || isBool(name) {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// FilterArgs keeps the arguments of the flags named in allowed, with their
// values. Names are given without dashes and match both the single and the
// double dash form, with the value inline ("-c=x") or as the next argument.
// A value that starts with a dash must be given inline. Filtering stops
// at "--".
func FilterArgs(args []string, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		set[strings.TrimLeft(f, "-")] = struct{}{}
	}
	allowedName := func(n string) bool {
		_, ok := set[n]
		return ok
	}
	return filter(args, allowedName, func(string) bool { return false })
}

// Names lists the flags defined on fs in lexical order.
func Names(fs *flag.FlagSet) []string {
	var names []string
	fs.VisitAll(func(f *flag.Flag) { names = append(names, f.Name) })
	return names
}

type boolFlag interface {
	IsBoolFlag() bool
}

// ParseOwn parses only the arguments that belong to flags defined on fs.
// Boolean flags never consume the following argument.
func ParseOwn(fs *flag.FlagSet, args []string) error {
	own := filter(args,
		func(n string) bool { return fs.Lookup(n) != nil },
		func(n string) bool {
			b, ok := fs.Lookup(n).Value.(boolFlag)
			return ok && b.IsBoolFlag()
		})
	return fs.Parse(own)
}

// ConfigPath returns the JSON config path given with -c or -config, or ""
// when neither is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = ParseOwn(fs, args)
	return path
}
