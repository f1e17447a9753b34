package prometheus

import (
	"strconv"
	"time"
)

// Response is the wire shape of an instant query answer.
//
//	{"status":"success","data":{"resultType":"vector","result":[
//	  {"metric":{"namespace":"prod",...},"value":[1700000000.123,"42"]}]}}
//
// The value pair carries the evaluation timestamp as a JSON number and the
// sample value as a numeric string, so rows decode into untyped pairs and
// each element is coerced at selection time. A malformed pair disqualifies
// the row (no-match), never the whole response.
type Response struct {
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

// Data holds the result vector of a query response.
type Data struct {
	ResultType string   `json:"resultType"`
	Result     []Result `json:"result"`
}

// Result is one row of a vector result.
type Result struct {
	Metric map[string]string `json:"metric"`
	Value  []interface{}     `json:"value"`
}

// StatusSuccess is the status value of a well-formed successful response.
const StatusSuccess = "success"

// selectPair finds the value pair of the first row whose namespace label
// equals target. Rows are scanned in response order, so on duplicate
// namespaces the first row wins; that tie-break is deliberate and stable.
// Returns false when the response is not a success, the result list is
// empty, no row matches, or the matching pair does not have exactly two
// elements.
func selectPair(resp Response, target string) ([]interface{}, bool) {
	if resp.Status != StatusSuccess {
		return nil, false
	}
	for _, row := range resp.Data.Result {
		if row.Metric["namespace"] != target {
			continue
		}
		if len(row.Value) != 2 {
			return nil, false
		}
		return row.Value, true
	}
	return nil, false
}

// asFloat coerces a pair element to a float. Sample values arrive as numeric
// strings; evaluation timestamps arrive as numbers. Anything else fails.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// SelectValue extracts the sample value of the row matching the target
// namespace, truncated to an integer byte count. A value that does not parse
// as a number is treated as no-match, never as an error.
func SelectValue(resp Response, target string) (int64, bool) {
	pair, ok := selectPair(resp, target)
	if !ok {
		return 0, false
	}
	f, ok := asFloat(pair[1])
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// SelectTimestamp extracts the sample value of the matching row interpreted
// as unix seconds, converted to UTC. Used for timestamp() queries, where the
// value half of the pair carries the scrape instant.
func SelectTimestamp(resp Response, target string) (time.Time, bool) {
	pair, ok := selectPair(resp, target)
	if !ok {
		return time.Time{}, false
	}
	secs, ok := asFloat(pair[1])
	if !ok {
		return time.Time{}, false
	}
	sec := int64(secs)
	nsec := int64((secs - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC(), true
}
