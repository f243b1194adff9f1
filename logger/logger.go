// seehuhn.de/go/pdfcompose - merge and split PDF documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package logger defines the pluggable log function used by the composition
// engine.
//
// The engine never writes to a global logger.  Callers pass a [Func] to the
// objects which need to report something.  [Discard] silently drops all
// messages.
package logger

import (
	"fmt"
	"log"
	"strings"
)

// Level represents the severity of a log message.
type Level int

// These are the supported log levels, in increasing order of severity.
const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("logger.Level(%d)", int(l))
	}
}

// Func is a single function which handles log messages of all levels.
// The keyvals alternate between keys (normally strings) and values.
type Func func(level Level, msg string, keyvals ...any)

// Discard is a Func which ignores all messages.
func Discard(Level, string, ...any) {}

// Std returns a Func which writes all messages of level min or above to l.
// Messages are formatted as "level: msg key=value ...".
func Std(l *log.Logger, min Level) Func {
	return func(level Level, msg string, keyvals ...any) {
		if level < min {
			return
		}
		l.Print(Format(level, msg, keyvals...))
	}
}

// Format renders a log message as a single line of text.
func Format(level Level, msg string, keyvals ...any) string {
	b := &strings.Builder{}
	b.WriteString(level.String())
	b.WriteString(": ")
	b.WriteString(msg)
	for i := 0; i < len(keyvals); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(keyvals) {
			fmt.Fprintf(b, "%v=%v", keyvals[i], keyvals[i+1])
		} else {
			fmt.Fprintf(b, "%v=<missing>", keyvals[i])
		}
	}
	return b.String()
}

// OrDiscard returns f, or Discard if f is nil.
func OrDiscard(f Func) Func {
	if f == nil {
		return Discard
	}
	return f
}
