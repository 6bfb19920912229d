package command

import (
	"strings"
	"unicode"
)

// SayPrefixes start a line that is spoken aloud without typing "say".
const SayPrefixes = `'"`

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the text after the command with its inner spacing kept, so
	// speech and free text reach the narrator as typed.
	RawArgs string
}

// Parse splits a text line into a command and arguments. A line starting
// with ' or " is shorthand for say; the quote is dropped, along with a
// matching closing quote.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	if q := line[0]; strings.IndexByte(SayPrefixes, q) >= 0 {
		speech := strings.TrimSpace(strings.TrimSuffix(line[1:], string(q)))
		return ParseResult{Command: HandlerSay, Args: fields(speech), RawArgs: speech}
	}

	end := strings.IndexFunc(line, unicode.IsSpace)
	if end < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}
	rest := strings.TrimSpace(line[end:])
	return ParseResult{
		Command: strings.ToLower(line[:end]),
		Args:    fields(rest),
		RawArgs: rest,
	}
}

func fields(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
