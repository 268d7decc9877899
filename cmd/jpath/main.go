// Command jpath is a small command-line query runner: it reads a JSON or
// YAML document, runs a JPath query against it, and prints the resulting
// selection. Flag handling and error-reporting convention follow
// cmd/graft/main.go in the teacher repository.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/starkandwayne/goutils/ansi"
	"github.com/voxelbrain/goptions"

	"github.com/jpath-lang/jpath/internal/log"
	"github.com/jpath-lang/jpath/internal/pathutil"
	"github.com/jpath-lang/jpath/pkg/jpath"
)

var printfStdOut = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

var exit = func(code int) { os.Exit(code) }

func main() {
	var options struct {
		Format  string             `goptions:"-f, --format, description='Input format: json or yaml (default: auto-detect by extension, falls back to json)'"`
		Output  string             `goptions:"-o, --output, description='Output format: json or yaml (default: json)'"`
		Path    bool               `goptions:"-p, --path, description='Treat <query> as a plain dotted path (a.b[0].c) instead of a full jpath query'"`
		Verbose bool               `goptions:"-v, --verbose, description='Enable DEBUG/TRACE logging to stderr'"`
		Help    bool               `goptions:"-h, --help"`
		Args    goptions.Remainder `goptions:"description='<query> [file]'"`
	}
	if err := goptions.Parse(&options); err != nil || options.Help {
		goptions.PrintHelp()
		exit(1)
		return
	}

	if options.Verbose {
		log.SetTrace(true)
	}

	if len(options.Args) < 1 {
		log.PrintfStdErr("@R{usage: jpath [options] <query> [file]}\n")
		exit(1)
		return
	}
	query := options.Args[0]

	data, inputName, err := readInput(options.Args[1:])
	if err != nil {
		log.PrintfStdErr("@R{%s}\n", err.Error())
		exit(2)
		return
	}

	doc, err := decode(data, options.Format, inputName)
	if err != nil {
		log.PrintfStdErr("@R{%s}\n", err.Error())
		exit(2)
		return
	}

	var out string
	if options.Path {
		out, err = runPathLookup(doc, query, options.Output)
	} else {
		out, err = runQuery(doc, query, options.Output)
	}
	if err != nil {
		log.PrintfStdErr("@R{%s}\n", err.Error())
		exit(2)
		return
	}
	printfStdOut("%s\n", out)
}

// runQuery is the default mode: parse and evaluate query as a full jpath
// expression, rendering the resulting Selection.
func runQuery(doc *jpath.Value, query, outputFormat string) (string, error) {
	sel, err := jpath.Query(query, doc)
	if err != nil {
		return "", err
	}
	return render(sel, outputFormat)
}

// runPathLookup is the -p/--path mode: resolve query as a plain dotted path
// via internal/pathutil rather than the full grammar, for callers that just
// want "a.b[0].c" style access and don't need filters, deep descent or
// functions.
func runPathLookup(doc *jpath.Value, query, outputFormat string) (string, error) {
	log.DEBUG("resolving dotted path %q via pathutil", query)
	v, err := pathutil.Lookup(doc, query)
	if err != nil {
		return "", err
	}
	return render(jpath.NewSelection(v), outputFormat)
}

func readInput(rest []string) (data []byte, name string, err error) {
	if len(rest) == 0 || rest[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
		return data, "", err
	}
	name = rest[0]
	data, err = os.ReadFile(name)
	return data, name, err
}

func decode(data []byte, format, name string) (*jpath.Value, error) {
	if format == "" {
		if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
			format = "yaml"
		} else {
			format = "json"
		}
	}
	switch format {
	case "yaml":
		return jpath.FromYAML(data)
	case "json":
		return jpath.FromJSON(data)
	default:
		return nil, fmt.Errorf("unknown input format %q (want json or yaml)", format)
	}
}

func render(sel *jpath.Selection, format string) (string, error) {
	result := jpath.NewArray(append([]*jpath.Value{}, sel.Items()...))
	if sel.Len() == 1 {
		result = sel.Items()[0]
	}
	switch format {
	case "", "json":
		b, err := result.ToJSON()
		return string(b), err
	case "yaml":
		b, err := result.ToYAML()
		return strings.TrimRight(string(b), "\n"), err
	default:
		return "", fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

func init() {
	ansi.Color(true)
}
