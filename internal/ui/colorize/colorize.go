// Package colorize provides syntax highlighting for disassembly and
// register-dump output.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-isatty"
)

// getAssemblyLexer returns an appropriate assembly lexer with fallbacks.
func getAssemblyLexer() chroma.Lexer {
	candidates := []string{"armasm", "gas", "GAS", "Gas", "nasm"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getDisasmStyle returns the disassembly style with fallbacks.
func getDisasmStyle() *chroma.Style {
	candidates := []string{"disasm-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter.
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Enabled reports whether colorized output should be produced.
func Enabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// Asm colorizes a block of assembly text. Returns the input unchanged when
// color is disabled or no lexer is available.
func Asm(source string) string {
	if !Enabled() {
		return source
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return source
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var sb strings.Builder
	if err := getTerminalFormatter().Format(&sb, getDisasmStyle(), iterator); err != nil {
		return source
	}

	return sb.String()
}

// Dump colorizes a register/stack dump line by line, highlighting hex
// values.
func Dump(dump string) string {
	if !Enabled() {
		return dump
	}

	var sb strings.Builder
	for _, line := range strings.Split(dump, "\n") {
		if strings.Contains(line, "0x") {
			sb.WriteString(Asm(line))
		} else {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
