// Package foodtests contains the food catalog workflows and their supporting API.
//
// A workflow is a fixed sequence of steps run against the catalog service: list the food, add an
// item, check that it is there, and reset the test data. Each step is a named subtest, and a
// failed step causes the rest of its workflow to be skipped. The same workflows run inside the
// harness's own test tree (T) and under "go test" (GoTestScope).
//
// Test harness infrastructure that is not specific to the food catalog, such as filtering and
// result reporting, is in the lower-level framework package.
package foodtests
