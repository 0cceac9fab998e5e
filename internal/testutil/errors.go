// Package testutil provides testing utilities for simdriver.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockRunnerCrashed indicates a mock runner failed before producing output.
	ErrMockRunnerCrashed = errors.New("runner crashed")

	// ErrMockLaunch indicates a mock process could not be launched.
	ErrMockLaunch = errors.New("mock launch failed")

	// ErrMockRecorder indicates a mock recorder failed.
	ErrMockRecorder = errors.New("mock recorder failed")
)
