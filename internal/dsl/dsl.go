package dsl

import "strings"

// CheckResult is the outcome of running the type checker over a parsed
// program: either an empty error list (ready to run) or a non-empty one
// (spec.md §4.7: "checking fails only if at least one error was emitted").
type CheckResult struct {
	Errors []*TypeError
}

// Check type-checks prog against rt's currently-known globals and element
// aliases (so a follow-up interactive script sees what a prior script
// already declared), without mutating rt.
func Check(file string, prog *Program, rt *Runtime) CheckResult {
	c := NewChecker(file, rt.GlobalTypes(), rt.KnownElementIDs())
	return CheckResult{Errors: c.Check(prog)}
}

// FormatErrors renders a CheckResult's errors one per line, for embedding
// in an AI driver retry hint or a CLI diagnostic dump.
func (r CheckResult) FormatErrors() string {
	var b strings.Builder
	for i, e := range r.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// OK reports whether checking produced no errors.
func (r CheckResult) OK() bool { return len(r.Errors) == 0 }

// RunScript parses, type-checks, and (on success) executes src against rt
// in one call — the shape both `cmd/revel --dsl` and the AI driver's
// type-check-execute loop need. On a parse or type error, execution never
// starts and the undo stack is left untouched.
func RunScript(file, src string, rt *Runtime) (CheckResult, error) {
	prog, err := Parse(file, src)
	if err != nil {
		return CheckResult{Errors: []*TypeError{{File: file, Msg: err.Error()}}}, nil
	}
	result := Check(file, prog, rt)
	if !result.OK() {
		return result, nil
	}
	return result, rt.Run(prog)
}
