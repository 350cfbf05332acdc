// processor_test.go: tests for rule evaluation and audit output
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package appsec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	integrations "github.com/agilira/go-integrations"
)

func TestProcessor_DefaultRules(t *testing.T) {
	p, err := NewProcessor(integrations.SecuritySettings{}, nil)
	require.NoError(t, err)

	tests := []struct {
		value string
		rule  string
	}{
		{"1 union select x", "sqli-001"},
		{"' OR '1'='1", "sqli-002"},
		{"<script>alert(1)</script>", "xss-001"},
		{"../../etc/passwd", "lfi-001"},
	}
	for _, tt := range tests {
		matches := p.Inspect(Request{Attributes: map[string]string{"http.query": tt.value}})
		require.Len(t, matches, 1, tt.value)
		assert.Equal(t, tt.rule, matches[0].RuleID)
		assert.Equal(t, "http.query", matches[0].Target)
	}

	assert.Empty(t, p.Inspect(Request{Attributes: map[string]string{"http.query": "page=2"}}))
	inspections, matches := p.Stats()
	assert.Equal(t, int64(5), inspections)
	assert.Equal(t, int64(4), matches)
}

func TestProcessor_TargetsAndOrdering(t *testing.T) {
	p, err := NewProcessor(integrations.SecuritySettings{
		Rules: []integrations.SecurityRule{
			{ID: "body-only", Pattern: "secret", Targets: []string{"http.body"}},
			{ID: "anywhere", Pattern: "secret"},
		},
	}, nil)
	require.NoError(t, err)

	matches := p.Inspect(Request{Attributes: map[string]string{
		"http.url":  "/secret",
		"http.body": "secret=1",
	}})
	assert.Equal(t, []Match{
		{RuleID: "body-only", Target: "http.body", Value: "secret=1"},
		{RuleID: "anywhere", Target: "http.body", Value: "secret=1"},
		{RuleID: "anywhere", Target: "http.url", Value: "/secret"},
	}, matches)
}

func TestProcessor_AuditTrail(t *testing.T) {
	auditFile := filepath.Join(t.TempDir(), "audit", "appsec.jsonl")
	p, err := NewProcessor(integrations.SecuritySettings{AuditFile: auditFile}, nil)
	require.NoError(t, err)

	p.Inspect(Request{Attributes: map[string]string{"http.body": "<script>"}})
	require.NoError(t, p.Finalize())
	require.NoError(t, p.Finalize())
	assert.Equal(t, int32(1), p.finalizes.Load())

	info, err := os.Stat(auditFile)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
