// Copyright 2026 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package metrics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricNameRe = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	labelNameRe  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// parseMetric splits a Prometheus-compatible name like foo{bar="baz"} into
// the bare name and its constant labels.
func parseMetric(s string) (string, prometheus.Labels, error) {
	name, rest, hasLabels := strings.Cut(s, "{")
	if !metricNameRe.MatchString(name) {
		return "", nil, fmt.Errorf("invalid metric name %q", name)
	}
	if !hasLabels {
		return name, nil, nil
	}
	if !strings.HasSuffix(rest, "}") {
		return "", nil, fmt.Errorf("missing closing brace in %q", s)
	}
	rest = strings.TrimSuffix(rest, "}")

	labels := prometheus.Labels{}
	for len(rest) > 0 {
		key, value, ok := strings.Cut(rest, "=")
		if !ok {
			return "", nil, fmt.Errorf("missing '=' after label %q in %q", key, s)
		}
		key = strings.TrimSpace(key)
		if !labelNameRe.MatchString(key) {
			return "", nil, fmt.Errorf("invalid label name %q in %q", key, s)
		}
		if !strings.HasPrefix(value, `"`) {
			return "", nil, fmt.Errorf("label %q value must be quoted in %q", key, s)
		}
		end := strings.IndexByte(value[1:], '"')
		if end < 0 {
			return "", nil, fmt.Errorf("unterminated value of label %q in %q", key, s)
		}
		labels[key] = value[1 : end+1]
		rest = strings.TrimPrefix(strings.TrimSpace(value[end+2:]), ",")
		rest = strings.TrimSpace(rest)
	}
	return name, labels, nil
}
