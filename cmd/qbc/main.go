// qbc reads a JSON-encoded elaborated Quirrel AST and lowers it to
// bytecode, printing a disassembly or opening an interactive instruction
// browser.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/quirrel-lang/qbc/ast"
	"github.com/quirrel-lang/qbc/emit"
	"github.com/quirrel-lang/qbc/instr"
)

const version = "0.1.0"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))
)

func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `qbc v%s — Quirrel bytecode emitter

USAGE:
    %s [OPTIONS]

DESCRIPTION:
    qbc lowers a fully elaborated Quirrel AST, given as JSON, into a linear
    bytecode instruction sequence for a stack-based virtual machine.

OPTIONS:
    -f, --file <path>       Lower an AST read from a JSON file
    -e, --emit <json>       Lower an AST given inline as a JSON string
    -d, --disasm            Print the disassembly (default when not -i)
    -i, --interactive       Open an interactive instruction browser
    -v, --version           Show version information
    -h, --help              Show this help message

EXAMPLES:
    %s -f query.json
    %s -e '{"kind":"num","line":1,"text":"1","prov":{"kind":"value"},"value":"1"}'
    %s -f query.json -i

`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	fileFlag := flag.String("file", "", "lower an AST read from a JSON file")
	emitFlag := flag.String("emit", "", "lower an AST given inline as a JSON string")
	disasmFlag := flag.Bool("disasm", false, "print the disassembly")
	interactiveFlag := flag.Bool("interactive", false, "open an interactive instruction browser")
	versionFlag := flag.Bool("version", false, "show version information")

	flag.StringVar(fileFlag, "f", "", "lower an AST read from a JSON file")
	flag.StringVar(emitFlag, "e", "", "lower an AST given inline as a JSON string")
	flag.BoolVar(disasmFlag, "d", false, "print the disassembly")
	flag.BoolVar(interactiveFlag, "i", false, "open an interactive instruction browser")
	flag.BoolVar(versionFlag, "v", false, "show version information")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("qbc v%s\n", version)
		return
	}

	var data []byte
	var err error
	switch {
	case *fileFlag != "":
		data, err = readJSONFile(*fileFlag)
	case *emitFlag != "":
		data = []byte(*emitFlag)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	expr, err := ast.Decode(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("decode error: "+err.Error()))
		os.Exit(1)
	}

	bytecode, err := emit.Emit(expr)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("emit error: "+err.Error()))
		os.Exit(1)
	}

	if *interactiveFlag {
		if err := runBrowser(bytecode); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		return
	}

	printDisassembly(bytecode)
}

func readJSONFile(filename string) ([]byte, error) {
	cleaned := filepath.Clean(filename)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	//nolint:gosec // operator-supplied fixture path, not attacker-controlled input
	content, err := os.ReadFile(absolute)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", absolute, err)
	}
	return content, nil
}

func printDisassembly(bytecode []instr.Instruction) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("qbc v%s — %d instructions", version, len(bytecode))))
	fmt.Print(resultStyle.Render(instr.Disassemble(bytecode)))
}
