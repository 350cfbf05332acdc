// version.go: Version constraints for integration compatibility checks
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// VersionConstraint decides whether an installed library version is
// supported. A nil constraint on a descriptor means "not applicable".
type VersionConstraint interface {
	Allows(version string) bool
	String() string
}

// NormalizeVersion converts "2.1", "v2.1.0" or "2.1.0-rc.1" into canonical
// semver form ("v2.1.0", "v2.1.0-rc.1"). The second result is false when the
// input is not a semantic version.
func NormalizeVersion(version string) (string, bool) {
	v := strings.TrimSpace(version)
	if v == "" {
		return "", false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return semver.Canonical(v), true
}

type constraintOp string

const (
	opAny   constraintOp = "*"
	opEq    constraintOp = "="
	opNeq   constraintOp = "!="
	opGt    constraintOp = ">"
	opGte   constraintOp = ">="
	opLt    constraintOp = "<"
	opLte   constraintOp = "<="
	opCaret constraintOp = "^"
	opTilde constraintOp = "~"
)

// ordered so that two-character operators match before their prefixes
var constraintOps = []constraintOp{opGte, opLte, opNeq, opGt, opLt, opCaret, opTilde, opEq}

type clause struct {
	op      constraintOp
	version string
}

func (c clause) allows(v string) bool {
	cmp := semver.Compare(v, c.version)
	switch c.op {
	case opAny:
		return true
	case opEq:
		return cmp == 0
	case opNeq:
		return cmp != 0
	case opGt:
		return cmp > 0
	case opGte:
		return cmp >= 0
	case opLt:
		return cmp < 0
	case opLte:
		return cmp <= 0
	case opCaret:
		if cmp < 0 {
			return false
		}
		if semver.Major(c.version) == "v0" {
			return semver.MajorMinor(v) == semver.MajorMinor(c.version)
		}
		return semver.Major(v) == semver.Major(c.version)
	case opTilde:
		return cmp >= 0 && semver.MajorMinor(v) == semver.MajorMinor(c.version)
	default:
		return false
	}
}

// Constraint is a conjunction of comparison clauses, e.g. ">= 2.0, < 3".
//
// Supported operators: = (also ==), !=, >, >=, <, <=, ^ (same major),
// ~ (same minor) and * (any version).
type Constraint struct {
	raw     string
	clauses []clause
}

// ParseConstraint parses a comma separated constraint expression.
func ParseConstraint(expr string) (*Constraint, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return nil, NewInvalidConstraintError(expr, nil)
	}

	c := &Constraint{raw: raw}
	for _, part := range strings.Split(raw, ",") {
		cl, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return nil, NewInvalidConstraintError(expr, err)
		}
		c.clauses = append(c.clauses, cl)
	}
	return c, nil
}

func parseClause(part string) (clause, error) {
	if part == string(opAny) {
		return clause{op: opAny}, nil
	}
	part = strings.Replace(part, "==", "=", 1)

	op := opEq
	for _, candidate := range constraintOps {
		if strings.HasPrefix(part, string(candidate)) {
			op = candidate
			part = strings.TrimSpace(strings.TrimPrefix(part, string(candidate)))
			break
		}
	}

	v, ok := NormalizeVersion(part)
	if !ok {
		return clause{}, fmt.Errorf("invalid version %q", part)
	}
	return clause{op: op, version: v}, nil
}

// MustConstraint is ParseConstraint for package-level declarations.
func MustConstraint(expr string) *Constraint {
	c, err := ParseConstraint(expr)
	if err != nil {
		panic(err)
	}
	return c
}

// RequireAtLeast accepts versions greater than or equal to minimum.
func RequireAtLeast(minimum string) *Constraint {
	return MustConstraint(">= " + minimum)
}

// Allows implements VersionConstraint. Versions that are not semantic
// versions are never allowed.
func (c *Constraint) Allows(version string) bool {
	v, ok := NormalizeVersion(version)
	if !ok {
		return false
	}
	for _, cl := range c.clauses {
		if !cl.allows(v) {
			return false
		}
	}
	return true
}

// String implements VersionConstraint.
func (c *Constraint) String() string {
	return c.raw
}

// VersionPredicate adapts a plain function into a VersionConstraint.
type VersionPredicate struct {
	Description string
	Fn          func(version string) bool
}

// Allows implements VersionConstraint.
func (p VersionPredicate) Allows(version string) bool {
	return p.Fn != nil && p.Fn(version)
}

// String implements VersionConstraint.
func (p VersionPredicate) String() string {
	return p.Description
}

// checkVersion returns an incompatible version error when constraint
// rejects version. A nil constraint accepts everything.
func checkVersion(name string, constraint VersionConstraint, version string) error {
	if constraint == nil {
		return nil
	}
	if !constraint.Allows(version) {
		return NewIncompatibleVersionError(name, version, constraint.String())
	}
	return nil
}
