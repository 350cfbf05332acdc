// processor.go: Security inspection engine owned by the appsec component
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package appsec

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"

	integrations "github.com/agilira/go-integrations"
)

// DefaultRules are used when the settings declare none.
var DefaultRules = []integrations.SecurityRule{
	{ID: "sqli-001", Pattern: `(?i)\bunion\b\s+\bselect\b`},
	{ID: "sqli-002", Pattern: `(?i)'\s*or\s+'?1'?\s*=\s*'?1`},
	{ID: "xss-001", Pattern: `(?i)<\s*script\b`},
	{ID: "lfi-001", Pattern: `\.\./\.\./`},
}

// Request carries the attributes of one request to inspect, such as
// "http.url" or "http.body".
type Request struct {
	Attributes map[string]string
}

// Match is a rule hit on one request attribute.
type Match struct {
	RuleID string
	Target string
	Value  string
}

type compiledRule struct {
	id      string
	re      *regexp.Regexp
	targets map[string]struct{}
}

func (r compiledRule) appliesTo(target string) bool {
	if len(r.targets) == 0 {
		return true
	}
	_, ok := r.targets[target]
	return ok
}

// Processor evaluates inspection rules. It is created by the component on
// enable and finalized exactly once on shutdown.
type Processor struct {
	logger integrations.Logger
	rules  []compiledRule
	audit  *argus.AuditLogger

	inspections atomic.Int64
	matches     atomic.Int64
	finalized   atomic.Bool
	finalizes   atomic.Int32
}

// NewProcessor compiles the rules in settings and opens the audit trail
// when an audit file is configured.
func NewProcessor(settings integrations.SecuritySettings, logger integrations.Logger) (*Processor, error) {
	if logger == nil {
		logger = integrations.DefaultLogger()
	}

	source := settings.Rules
	if len(source) == 0 {
		source = DefaultRules
	}

	rules := make([]compiledRule, 0, len(source))
	for _, r := range source {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		cr := compiledRule{id: r.ID, re: re}
		if len(r.Targets) > 0 {
			cr.targets = make(map[string]struct{}, len(r.Targets))
			for _, t := range r.Targets {
				cr.targets[t] = struct{}{}
			}
		}
		rules = append(rules, cr)
	}

	p := &Processor{logger: logger, rules: rules}
	if settings.AuditFile != "" {
		audit, err := openAudit(settings.AuditFile)
		if err != nil {
			return nil, err
		}
		p.audit = audit
	}

	logger.Debug("Security processor ready", "rules", len(rules), "audit", settings.AuditFile != "")
	return p, nil
}

func openAudit(path string) (*argus.AuditLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	return argus.NewAuditLogger(argus.AuditConfig{
		Enabled:       true,
		OutputFile:    path,
		MinLevel:      argus.AuditInfo,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		IncludeStack:  false,
	})
}

// Inspect evaluates every rule against the request attributes. Matches
// are ordered by attribute name, then rule order.
func (p *Processor) Inspect(req Request) []Match {
	p.inspections.Add(1)

	targets := make([]string, 0, len(req.Attributes))
	for k := range req.Attributes {
		targets = append(targets, k)
	}
	sort.Strings(targets)

	var found []Match
	for _, target := range targets {
		value := req.Attributes[target]
		for _, r := range p.rules {
			if r.appliesTo(target) && r.re.MatchString(value) {
				found = append(found, Match{RuleID: r.id, Target: target, Value: value})
			}
		}
	}

	if len(found) > 0 {
		p.matches.Add(int64(len(found)))
		p.auditMatches(found)
	}
	return found
}

func (p *Processor) auditMatches(found []Match) {
	if p.audit == nil {
		return
	}
	for _, m := range found {
		p.audit.LogSecurityEvent("appsec_rule_match", "Security rule matched", map[string]interface{}{
			"rule_id":   m.RuleID,
			"target":    m.Target,
			"component": ComponentName,
		})
	}
}

// Stats reports the number of inspections and matches so far.
func (p *Processor) Stats() (inspections, matches int64) {
	return p.inspections.Load(), p.matches.Load()
}

// Finalize releases the processor's resources. Only the first call does
// any work.
func (p *Processor) Finalize() error {
	if !p.finalized.CompareAndSwap(false, true) {
		return nil
	}
	p.finalizes.Add(1)

	var err error
	if p.audit != nil {
		p.audit.LogSecurityEvent("appsec_processor_finalized", "Security processor finalized", map[string]interface{}{
			"component": ComponentName,
		})
		err = p.audit.Close()
		p.audit = nil
	}
	p.rules = nil
	p.logger.Debug("Security processor finalized")
	return err
}

// Finalized reports whether Finalize has run.
func (p *Processor) Finalized() bool {
	return p.finalized.Load()
}
