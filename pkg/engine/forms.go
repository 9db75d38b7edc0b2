package engine

import "strings"

// form is one top-level expression of a script.
type form struct {
	text string
	line int // line the form starts on, 1-based
}

// splitForms breaks preprocessed source into its top-level forms.
// Unbalanced input still yields forms; the bad one fails to compile.
func splitForms(src string) []form {
	var forms []form
	line := 1
	start, startLine, depth := -1, 0, 0
	flush := func(end int) {
		if start >= 0 {
			forms = append(forms, form{text: src[start:end], line: startLine})
		}
		start, depth = -1, 0
	}
	for i := 0; i < len(src); i++ {
		c := src[i]
		comment := c == '/' && i+1 < len(src) && src[i+1] == '/'
		if start < 0 && !isSpace(c) && !comment {
			start, startLine = i, line
		}
		switch {
		case c == '\n':
			line++
			if depth == 0 {
				flush(i)
			}
		case isSpace(c):
			if depth == 0 {
				flush(i)
			}
		case comment:
			if depth == 0 {
				flush(i)
			}
			for i+1 < len(src) && src[i+1] != '\n' {
				i++
			}
		case c == '"' || c == '`':
			j := closingQuote(src, i)
			line += strings.Count(src[i:j+1], "\n")
			i = j
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
			if depth <= 0 {
				flush(i + 1)
			}
		}
	}
	flush(len(src))
	return forms
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// closingQuote returns the index of the quote ending the string literal
// opened at i, or the last index when it is never closed.
func closingQuote(src string, i int) int {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		if q == '"' && src[j] == '\\' {
			j++
			continue
		}
		if src[j] == q {
			return j
		}
	}
	return len(src) - 1
}

// locate moves error lines from form-relative to script lines. Errors
// without a usable line get the line the form starts on.
func (f form) locate(errs []EvalError) []EvalError {
	span := strings.Count(f.text, "\n") + 1
	for i := range errs {
		if n := errs[i].Line; n >= 1 && n <= span {
			errs[i].Line = f.line + n - 1
		} else {
			errs[i].Line = f.line
		}
	}
	return errs
}
