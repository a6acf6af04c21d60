package fixture

import (
	"errors"
	"fmt"
	"strings"

	"ferrule/internal/defs"
	"ferrule/internal/diag"
	"ferrule/internal/hir"
	"ferrule/internal/testkit"
)

// Check compares the result of lowering f with its expectations. c may be
// nil when lowering failed; only diagnostics are checked then.
func (f *Fixture) Check(c *hir.Crate, d *defs.Definitions, reported []diag.Diagnostic) error {
	exp := f.Expect
	if exp == nil {
		return nil
	}
	var errs []error
	errs = append(errs, matchDiagnostics(exp, reported)...)
	if c != nil {
		if exp.Owners > 0 {
			if got := len(c.OwnerDefs()); got != exp.Owners {
				errs = append(errs, fmt.Errorf("owners: got %d, want %d", got, exp.Owners))
			}
		}
		if exp.HIR != "" {
			got := hir.DumpString(c, d)
			if diff := testkit.Diff("expect.hir", "lowered", exp.HIR, got); diff != "" {
				errs = append(errs, fmt.Errorf("hir differs:\n%s", diff))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("crate %s: %w", f.Crate, err)
	}
	return nil
}

// matchDiagnostics pairs every expectation with the first unmatched
// diagnostic it accepts. Reported warnings and errors nobody expected are
// failures; notes are not.
func matchDiagnostics(exp *Expect, reported []diag.Diagnostic) []error {
	if len(exp.Diagnostics) == 0 && !exp.NoDiagnostics {
		return nil
	}
	var errs []error
	used := make([]bool, len(reported))
	for _, want := range exp.Diagnostics {
		found := false
		for i, got := range reported {
			if used[i] || !want.accepts(got) {
				continue
			}
			used[i] = true
			found = true
			break
		}
		if !found {
			errs = append(errs, fmt.Errorf("missing diagnostic %s", want))
		}
	}
	for i, got := range reported {
		if used[i] || got.Severity < diag.SevWarning {
			continue
		}
		errs = append(errs, fmt.Errorf("unexpected %s %s: %s", strings.ToLower(got.Severity.String()), got.Code.ID(), got.Message))
	}
	return errs
}

func (e ExpectedDiag) accepts(d diag.Diagnostic) bool {
	if e.Code != "" && !strings.EqualFold(e.Code, d.Code.ID()) {
		return false
	}
	if e.Severity != "" {
		if sev, err := diag.ParseSeverity(e.Severity); err != nil || sev != d.Severity {
			return false
		}
	}
	return e.Message == "" || strings.Contains(d.Message, e.Message)
}

func (e ExpectedDiag) String() string {
	var sb strings.Builder
	sb.WriteString(e.Code)
	if e.Severity != "" {
		sb.WriteString(" (" + e.Severity + ")")
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, " containing %q", e.Message)
	}
	return sb.String()
}
