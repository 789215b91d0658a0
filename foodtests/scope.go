package foodtests

import (
	"testing"

	"github.com/ibs-qa/food-contract-tests/framework"
)

// Scope is the part of a test's API that workflows use. It can be passed to the assert and
// require packages as if it were a *testing.T.
type Scope interface {
	Errorf(format string, args ...interface{})
	FailNow()

	// Debug adds a line of debug output for the test.
	Debug(message string, args ...interface{})
	DebugLogger() framework.Logger

	// Skip stops the test immediately and reports it as skipped.
	Skip(reason string)

	// Defer schedules fn to run when the test finishes, whether or not it passed.
	Defer(fn func())

	// Run runs a subtest and reports whether it passed. Skipped subtests count as passed.
	Run(name string, action func(Scope)) bool
}

// T represents a test or subtest in the harness's own test tree.
//
// It implements the same basic functionality as Go's testing.T, but outside of the Go test runner,
// with debug output that is captured per test by the framework package. Debug output is also sent
// to the process logger, so that it can be followed live.
type T struct {
	context       *framework.Context
	processLogger framework.Logger
}

func NewT(context *framework.Context, processLogger framework.Logger) *T {
	if processLogger == nil {
		processLogger = framework.NullLogger()
	}
	return &T{context: context, processLogger: processLogger}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

func (t *T) Debug(message string, args ...interface{}) {
	t.DebugLogger().Printf(message, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return framework.Tee(t.context.DebugLogger(), t.processLogger)
}

func (t *T) Skip(reason string) {
	t.context.SkipWithReason(reason)
}

func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

func (t *T) Run(name string, action func(Scope)) bool {
	return t.context.Run(name, func(c *framework.Context) {
		action(NewT(c, t.processLogger))
	})
}

func (t *T) ID() framework.TestID {
	return t.context.ID()
}

type goTestScope struct {
	t *testing.T
}

// GoTestScope lets workflows run under the Go test runner. Debug output goes to t.Logf, so it is
// shown for failed tests and with "go test -v".
func GoTestScope(t *testing.T) Scope {
	return goTestScope{t: t}
}

func (g goTestScope) Errorf(format string, args ...interface{}) {
	g.t.Helper()
	g.t.Errorf(format, args...)
}

func (g goTestScope) FailNow() {
	g.t.Helper()
	g.t.FailNow()
}

func (g goTestScope) Debug(message string, args ...interface{}) {
	g.t.Logf(message, args...)
}

func (g goTestScope) DebugLogger() framework.Logger {
	return testLogfLogger{t: g.t}
}

func (g goTestScope) Skip(reason string) {
	g.t.Skip(reason)
}

func (g goTestScope) Defer(fn func()) {
	g.t.Cleanup(fn)
}

func (g goTestScope) Run(name string, action func(Scope)) bool {
	return g.t.Run(name, func(t *testing.T) {
		action(GoTestScope(t))
	})
}

type testLogfLogger struct {
	t *testing.T
}

func (l testLogfLogger) Printf(message string, args ...interface{}) {
	l.t.Logf(message, args...)
}
