package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// enumFlag is a string flag restricted to a fixed set of values. Values are
// matched case-insensitively and stored lower-cased.
type enumFlag struct {
	value   *string
	allowed []string
}

var _ pflag.Value = (*enumFlag)(nil)

func newEnumFlag(p *string, allowed ...string) *enumFlag {
	return &enumFlag{value: p, allowed: allowed}
}

func (e *enumFlag) String() string {
	if e.value == nil {
		return ""
	}
	return *e.value
}

func (e *enumFlag) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(e.allowed, s) {
		return fmt.Errorf("must be one of %s", strings.Join(e.allowed, "|"))
	}
	*e.value = s
	return nil
}

func (e *enumFlag) Type() string { return "string" }
