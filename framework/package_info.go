// Package framework contains the low-level implementation of test harness infrastructure
// that is not specific to the food catalog.
//
// The general model is:
//
// 1. The test harness talks to a service under test over HTTP. Before running anything it
// checks that the service is reachable (TestHarness).
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results (Context, Run, Results).
//
// 3. Tests can be selected with regex filters, their progress is reported to a TestLogger,
// and per-test debug output is captured so that it can be shown only for failed tests.
//
// The domain-specific code that knows what is being tested is responsible for the requests
// sent to the service and for a domain-specific test API on top of the test context.
package framework
