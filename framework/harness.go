package framework

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const statusPollInterval = time.Millisecond * 100

// TestHarness holds what every test in a run shares: the base URL of the service under test and
// the process-wide debug logger.
type TestHarness struct {
	serviceBaseURL string
	logger         Logger
}

// NewTestHarness verifies that the service under test is responding, by polling GET on
// statusPath until it returns any status below 500 or until statusQueryTimeout elapses. A
// statusQueryTimeout of zero skips the check.
func NewTestHarness(
	serviceBaseURL string,
	statusPath string,
	statusQueryTimeout time.Duration,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}

	h := &TestHarness{
		serviceBaseURL: strings.TrimSuffix(serviceBaseURL, "/"),
		logger:         debugLogger,
	}

	if statusQueryTimeout > 0 {
		if err := awaitService(h.serviceBaseURL+statusPath, statusQueryTimeout, startupOutput, debugLogger); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *TestHarness) ServiceBaseURL() string {
	return h.serviceBaseURL
}

func (h *TestHarness) Logger() Logger {
	return h.logger
}

func awaitService(url string, timeout time.Duration, output io.Writer, logger Logger) error {
	fmt.Fprintf(output, "Connecting to service at %s", url)

	client := &http.Client{Timeout: timeout}
	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode < 500 {
				fmt.Fprintln(output)
				logger.Printf("Service status query returned HTTP %d", resp.StatusCode)
				return nil
			}
			err = fmt.Errorf("service returned status code %d", resp.StatusCode)
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(statusPollInterval)
	}
}
