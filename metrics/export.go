package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteText writes the collector in a Prometheus-like text form, one line
// per series, sorted. Histograms print _sum, _count and _avg lines.
func WriteText(w io.Writer, c *Collector) error {
	for _, metric := range c.Snapshot() {
		labels := formatLabels(metric.Labels)

		var err error
		switch metric.Type {
		case "histogram":
			avg := 0.0
			if metric.Count > 0 {
				avg = metric.Value / float64(metric.Count)
			}
			_, err = fmt.Fprintf(w, "%s_sum%s %.6f\n%s_count%s %d\n%s_avg%s %.6f\n",
				metric.Name, labels, metric.Value,
				metric.Name, labels, metric.Count,
				metric.Name, labels, avg)
		default:
			_, err = fmt.Fprintf(w, "%s%s %g\n", metric.Name, labels, metric.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, v))
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, ",") + "}"
}
