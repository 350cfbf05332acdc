// options.go: Configuration option registry with eager and lazy defaults
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// EnabledOption is the option every integration resolves to decide
// eligibility.
const EnabledOption = "enabled"

// EvaluationMode controls when an option's default rule runs.
type EvaluationMode int

const (
	// Eager evaluates the default rule once, when the option is defined.
	Eager EvaluationMode = iota
	// Lazy evaluates the default rule on first resolution and memoizes it
	// in the ResolutionContext.
	Lazy
)

func (m EvaluationMode) String() string {
	switch m {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	default:
		return "unknown"
	}
}

// Option declares a named configuration value.
//
// Resolution precedence is explicit override, then the environment value
// named by EnvKey, then the default (DefaultFunc when set, Default
// otherwise). Validator runs on every resolved value.
type Option struct {
	Name        string
	Default     any
	DefaultFunc func() any
	Mode        EvaluationMode

	// EnvKey names the environment variable backing this option. Empty
	// means the option has no environment override.
	EnvKey string
	// EnvParser converts the raw environment value. When nil, bool
	// defaults use ParseEnvBool and everything else is kept as a string.
	EnvParser func(raw string) (any, error)

	Validator func(value any) error
}

func (o *Option) evaluateDefault() any {
	if o.DefaultFunc != nil {
		return o.DefaultFunc()
	}
	return o.Default
}

func (o *Option) parseEnv(raw string) (any, error) {
	if o.EnvParser != nil {
		return o.EnvParser(raw)
	}
	if _, isBool := o.Default.(bool); isBool {
		return ParseEnvBool(raw), nil
	}
	return raw, nil
}

type definedOption struct {
	Option
	eagerValue any
}

// OptionSet is an ordered collection of options within one namespace,
// usually one integration.
type OptionSet struct {
	namespace string

	mu      sync.RWMutex
	order   []string
	options map[string]*definedOption
}

// NewOptionSet creates an empty option set for the namespace.
func NewOptionSet(namespace string) *OptionSet {
	return &OptionSet{
		namespace: namespace,
		options:   make(map[string]*definedOption),
	}
}

// Namespace returns the namespace the set was created with.
func (s *OptionSet) Namespace() string {
	return s.namespace
}

// Define registers an option. Duplicate names fail with a duplicate option
// error; eager defaults are evaluated and validated immediately.
func (s *OptionSet) Define(opt Option) error {
	if opt.Name == "" {
		return NewInvalidDescriptorError(s.namespace, "option name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.options[opt.Name]; exists {
		return NewDuplicateOptionError(s.namespace, opt.Name)
	}
	if opt.EnvKey != "" {
		for _, name := range s.order {
			if s.options[name].EnvKey == opt.EnvKey {
				return NewEnvKeyConflictError(opt.EnvKey, s.namespace+"."+name, s.namespace+"."+opt.Name)
			}
		}
	}

	defined := &definedOption{Option: opt}
	if opt.Mode == Eager {
		value := defined.evaluateDefault()
		if opt.Validator != nil {
			if err := opt.Validator(value); err != nil {
				return NewInvalidOptionValueError(s.namespace, opt.Name, value, err)
			}
		}
		defined.eagerValue = value
	}

	s.options[opt.Name] = defined
	s.order = append(s.order, opt.Name)
	return nil
}

// MustDefine is Define for package-level declarations; it panics on error.
func (s *OptionSet) MustDefine(opts ...Option) *OptionSet {
	for _, opt := range opts {
		if err := s.Define(opt); err != nil {
			panic(err)
		}
	}
	return s
}

// Has reports whether name is defined.
func (s *OptionSet) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.options[name]
	return ok
}

// Names returns option names in definition order.
func (s *OptionSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// EnvKeys maps each claimed environment variable to its option name.
func (s *OptionSet) EnvKeys() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make(map[string]string)
	for _, name := range s.order {
		if key := s.options[name].EnvKey; key != "" {
			keys[key] = name
		}
	}
	return keys
}

// clone copies the definitions so the copy can grow without touching s.
func (s *OptionSet) clone() *OptionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := &OptionSet{
		namespace: s.namespace,
		order:     make([]string, len(s.order)),
		options:   make(map[string]*definedOption, len(s.options)),
	}
	copy(c.order, s.order)
	for name, opt := range s.options {
		c.options[name] = opt
	}
	return c
}

func (s *OptionSet) lookup(name string) (*definedOption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opt, ok := s.options[name]
	return opt, ok
}

// NewContext creates a resolution context reading environment values from
// env. A nil env disables environment overrides.
func (s *OptionSet) NewContext(env Environment) *ResolutionContext {
	return &ResolutionContext{
		id:   uuid.New(),
		set:  s,
		env:  env,
		memo: make(map[string]*memoEntry),
	}
}

type memoEntry struct {
	once  sync.Once
	value any
}

// ResolutionContext resolves options of one OptionSet and memoizes lazy
// defaults for its lifetime.
type ResolutionContext struct {
	id  uuid.UUID
	set *OptionSet
	env Environment

	mu   sync.Mutex
	memo map[string]*memoEntry
}

// ID identifies the context in logs.
func (rc *ResolutionContext) ID() string {
	return rc.id.String()
}

// Resolve returns the effective value of name.
func (rc *ResolutionContext) Resolve(name string, overrides map[string]any) (any, error) {
	opt, ok := rc.set.lookup(name)
	if !ok {
		return nil, NewUnknownOptionError(rc.set.namespace, name)
	}

	value, err := rc.effectiveValue(opt, overrides)
	if err != nil {
		return nil, err
	}

	if opt.Validator != nil {
		if verr := opt.Validator(value); verr != nil {
			return nil, NewInvalidOptionValueError(rc.set.namespace, name, value, verr)
		}
	}
	return value, nil
}

func (rc *ResolutionContext) effectiveValue(opt *definedOption, overrides map[string]any) (any, error) {
	if v, ok := overrides[opt.Name]; ok {
		return v, nil
	}

	if opt.EnvKey != "" && rc.env != nil {
		if raw, ok := rc.env.LookupEnv(opt.EnvKey); ok {
			parsed, err := opt.parseEnv(raw)
			if err != nil {
				return nil, NewInvalidOptionValueError(rc.set.namespace, opt.Name, raw, err).
					WithContext("env_key", opt.EnvKey)
			}
			return parsed, nil
		}
	}

	if opt.Mode == Eager {
		return opt.eagerValue, nil
	}
	return rc.memoized(opt), nil
}

func (rc *ResolutionContext) memoized(opt *definedOption) any {
	rc.mu.Lock()
	entry, ok := rc.memo[opt.Name]
	if !ok {
		entry = &memoEntry{}
		rc.memo[opt.Name] = entry
	}
	rc.mu.Unlock()

	entry.once.Do(func() {
		entry.value = opt.evaluateDefault()
	})
	return entry.value
}

// Reset drops the memoized default of name so the next resolution
// evaluates the default rule again.
func (rc *ResolutionContext) Reset(name string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	delete(rc.memo, name)
}

// ResetAll drops every memoized default.
func (rc *ResolutionContext) ResetAll() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.memo = make(map[string]*memoEntry)
}

// Snapshot resolves every defined option. Override keys that name no
// option are ignored.
func (rc *ResolutionContext) Snapshot(overrides map[string]any) (Snapshot, error) {
	names := rc.set.Names()
	values := make(map[string]any, len(names))
	for _, name := range names {
		v, err := rc.Resolve(name, overrides)
		if err != nil {
			return Snapshot{}, err
		}
		values[name] = v
	}
	return Snapshot{order: names, values: values}, nil
}

// Snapshot is an immutable set of resolved option values.
type Snapshot struct {
	order  []string
	values map[string]any
}

// NewSnapshot builds a snapshot from plain values, mostly for tests and
// hosts that resolve configuration elsewhere.
func NewSnapshot(values map[string]any) Snapshot {
	order := make([]string, 0, len(values))
	copied := make(map[string]any, len(values))
	for k, v := range values {
		order = append(order, k)
		copied[k] = v
	}
	return Snapshot{order: order, values: copied}
}

// Get returns the raw value of name.
func (s Snapshot) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Bool returns name as a bool, false when missing or not a bool.
func (s Snapshot) Bool(name string) bool {
	b, _ := s.values[name].(bool)
	return b
}

// String returns name formatted as a string, "" when missing.
func (s Snapshot) String(name string) string {
	v, ok := s.values[name]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Int returns name as an int. Numeric strings are parsed; anything else
// yields 0.
func (s Snapshot) Int(name string) int {
	switch v := s.values[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Enabled returns the resolved enabled option.
func (s Snapshot) Enabled() bool {
	return s.Bool(EnabledOption)
}

// Names returns the option names in resolution order.
func (s Snapshot) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Map returns a copy of the resolved values.
func (s Snapshot) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Common validators

// IsBool rejects values that are not bool.
func IsBool(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// IsString rejects values that are not string.
func IsString(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// OneOf returns a validator accepting only the listed strings.
func OneOf(allowed ...string) func(any) error {
	return func(value any) error {
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		for _, a := range allowed {
			if str == a {
				return nil
			}
		}
		return fmt.Errorf("%q is not one of %v", str, allowed)
	}
}

// BoolOption declares a lazily defaulted bool option backed by envKey.
func BoolOption(name string, fallback bool, envKey string) Option {
	return Option{
		Name:      name,
		Default:   fallback,
		Mode:      Lazy,
		EnvKey:    envKey,
		Validator: IsBool,
	}
}

// StringOption declares an eagerly defaulted string option backed by envKey.
func StringOption(name, fallback, envKey string) Option {
	return Option{
		Name:      name,
		Default:   fallback,
		Mode:      Eager,
		EnvKey:    envKey,
		Validator: IsString,
	}
}
