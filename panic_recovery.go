// panic_recovery.go: Panic recovery for activation routines and event handlers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"fmt"
	"runtime"
)

// withStackRecover returns a function that, when deferred, logs a
// recovered panic with its stack trace.
//
//	defer withStackRecover(logger)()
func withStackRecover(logger Logger) func() {
	return func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			logger.Error("Panic recovered", "panic", r, "stack", string(buf[:n]))
		}
	}
}

// PanicError carries a panic recovered from an activation routine.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// callRecovering runs fn and converts a panic into a *PanicError.
func callRecovering(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			err = &PanicError{Value: r, Stack: buf[:n]}
		}
	}()
	return fn()
}
