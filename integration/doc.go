// Package integration runs the food catalog workflows against a real service under "go test":
//
//	FOODTEST_URL=http://localhost:8080 go test -tags integration ./integration/
//
// FOODTEST_CONFIG selects the configuration file. By default it is the app.yaml at the root of
// the repository.
package integration
