// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package text

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// ErrUnbalanced is the base error for every BalanceError
var ErrUnbalanced = errors.Base("unbalanced brackets")

// 🧱 BalanceError reports the first bracket that breaks the block structure
type BalanceError struct {
	Line   int
	Column int
	// Found is the offending bracket; zero when the text ended with blocks still open
	Found rune
	// Want is the closer that was expected; zero for a stray closer
	Want rune
}

func (e *BalanceError) Error() string {
	switch {
	case e.Found == 0:
		return fmt.Sprintf("%s: %d:%d: missing %q before end of text", ErrUnbalanced, e.Line, e.Column, e.Want)
	case e.Want == 0:
		return fmt.Sprintf("%s: %d:%d: unexpected %q", ErrUnbalanced, e.Line, e.Column, e.Found)
	default:
		return fmt.Sprintf("%s: %d:%d: found %q, want %q", ErrUnbalanced, e.Line, e.Column, e.Found, e.Want)
	}
}

func (e *BalanceError) Unwrap() error {
	return ErrUnbalanced
}

type scanState int

const (
	inCode scanState = iota
	inSingle
	inDouble
	inTemplate
	inLineComment
	inBlockComment
)

// templateHole marks a ${ opened inside a template literal
const templateHole = '$'

type opener struct {
	r         rune
	line, col int
}

var closers = map[rune]rune{'(': ')', '[': ']', '{': '}', templateHole: '}'}

// CheckBalance verifies that (), [] and {} nest correctly in JS/TS-like source.
// String literals, template literals and comments are skipped. Quote strings end
// at a newline so a stray apostrophe in JSX text only hides the rest of its line.
func CheckBalance(src string) error {
	var stack []opener
	state := inCode
	line, col := 1, 0

	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		col++
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		// escape consumes the rune after a backslash, which may be a line continuation
		escape := func() {
			i++
			col++
			if next == '\n' {
				line++
				col = 0
			}
		}

		switch state {
		case inLineComment:
			if r == '\n' {
				state = inCode
			}
		case inBlockComment:
			if r == '*' && next == '/' {
				state = inCode
				i++
				col++
			}
		case inSingle, inDouble:
			switch {
			case r == '\\':
				escape()
			case r == '\n':
				state = inCode
			case r == '\'' && state == inSingle, r == '"' && state == inDouble:
				state = inCode
			}
		case inTemplate:
			switch {
			case r == '\\':
				escape()
			case r == '`':
				state = inCode
			case r == '$' && next == '{':
				stack = append(stack, opener{templateHole, line, col})
				state = inCode
				i++
				col++
			}
		case inCode:
			switch r {
			case '/':
				switch next {
				case '/':
					state = inLineComment
				case '*':
					state = inBlockComment
					i++
					col++
				}
			case '\'':
				state = inSingle
			case '"':
				state = inDouble
			case '`':
				state = inTemplate
			case '(', '[', '{':
				stack = append(stack, opener{r, line, col})
			case ')', ']', '}':
				if len(stack) == 0 {
					return &BalanceError{Line: line, Column: col, Found: r}
				}
				top := stack[len(stack)-1]
				if want := closers[top.r]; want != r {
					return &BalanceError{Line: line, Column: col, Found: r, Want: want}
				}
				stack = stack[:len(stack)-1]
				if top.r == templateHole {
					state = inTemplate
				}
			}
		}

		if r == '\n' {
			line++
			col = 0
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return &BalanceError{Line: top.line, Column: top.col, Want: closers[top.r]}
	}
	return nil
}
