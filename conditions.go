package waitfor

import (
	"context"
	"os"
	"time"

	"github.com/jpalmerr/waitfor/internal/probe"
)

// FileCondition returns a [Condition] that is true while the file or
// directory at path exists.
//
// Example:
//
//	// wait until the deploy marker appears
//	waitfor.New(waitfor.FileCondition("/tmp/ready")).Start()
func FileCondition(path string) Condition {
	return func() bool {
		_, err := os.Stat(path)
		return err == nil
	}
}

// HTTPProbe configures an HTTP condition beyond the bare URL.
//
// The zero value of every field other than URL is usable: GET, no extra
// headers, a 10 second timeout, and "any 2xx" status acceptance.
type HTTPProbe struct {
	// URL is the target to probe.
	URL string

	// Status is the expected HTTP status code. Zero accepts any 2xx.
	Status int

	// Method is the HTTP method. Empty defaults to GET.
	Method string

	// Headers are sent with every probe.
	Headers map[string]string

	// Timeout bounds each probe. Zero uses the probe default (10s).
	Timeout time.Duration
}

// Condition returns a [Condition] that probes hp.URL on every trial and is
// true when the target answers with the expected status.
//
// Transport failures (unreachable host, timeout) are falsy trials, not
// errors: being not-yet-up is the normal starting situation for this
// condition.
func (hp HTTPProbe) Condition() Condition {
	client := probe.NewClient()
	return func() bool {
		res := client.Do(context.Background(), probe.Request{
			Method:  hp.Method,
			URL:     hp.URL,
			Headers: hp.Headers,
			Timeout: hp.Timeout,
		})
		if res.Err != nil {
			return false
		}
		if hp.Status == 0 {
			return res.StatusCode >= 200 && res.StatusCode < 300
		}
		return res.StatusCode == hp.Status
	}
}

// HTTPCondition returns a [Condition] that is true when url answers with
// wantStatus. A wantStatus of 0 accepts any 2xx response. For methods,
// headers, or timeouts, use [HTTPProbe] directly.
//
// Example:
//
//	// wait for the service to come up
//	waitfor.New(waitfor.HTTPCondition("http://localhost:8080/healthz", 200),
//	    waitfor.WithInterval(time.Second),
//	).Start()
func HTTPCondition(url string, wantStatus int) Condition {
	return HTTPProbe{URL: url, Status: wantStatus}.Condition()
}

// NodeCondition returns a [Condition] that is true while at least one
// element matches selector according to query. A nil query yields a nil
// condition, which [Poller.Start] silently refuses to schedule.
//
// This is the condition [NewNodePoller] installs.
func NodeCondition(query NodeQuery, selector string) Condition {
	if query == nil {
		return nil
	}
	return func() bool {
		return query.Count(selector) > 0
	}
}

// AllOf returns a [Condition] that is true only when every given condition
// is true. Conditions are evaluated in order and evaluation stops at the
// first false result. Nil conditions are skipped; AllOf of nothing is
// always true.
//
// Example:
//
//	// wait for both the API and its database proxy
//	cond := waitfor.AllOf(
//	    waitfor.HTTPCondition("http://localhost:8080/healthz", 200),
//	    waitfor.FileCondition("/var/run/dbproxy.sock"),
//	)
func AllOf(conds ...Condition) Condition {
	return func() bool {
		for _, cond := range conds {
			if cond == nil {
				continue
			}
			if !cond() {
				return false
			}
		}
		return true
	}
}

// AnyOf returns a [Condition] that is true when at least one of the given
// conditions is true. Conditions are evaluated in order and evaluation
// stops at the first true result. Nil conditions are skipped; AnyOf of
// nothing is always false.
func AnyOf(conds ...Condition) Condition {
	return func() bool {
		for _, cond := range conds {
			if cond == nil {
				continue
			}
			if cond() {
				return true
			}
		}
		return false
	}
}
