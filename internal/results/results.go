// Package results summarizes the metrics that a sweep's trainers print into one combined log.
package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/determined-ai/trainconf/pkg/logger"
)

// Metric names as they start a line of the combined log.
const (
	MetricMAP   = "mAP"
	MetricRank1 = "Rank-1"
	MetricRank5 = "Rank-5"
)

// Missing is printed for every field of a dataset that has no results.
const Missing = "-1"

var metricValue = regexp.MustCompile(`\d+\.\d+`)

// Metrics are the values reported for one dataset, one entry per evaluated snapshot.
type Metrics struct {
	MAP   []float64
	Rank1 []float64
	Rank5 []float64
}

func (m *Metrics) add(metric string, v float64) {
	switch metric {
	case MetricMAP:
		m.MAP = append(m.MAP, v)
	case MetricRank1:
		m.Rank1 = append(m.Rank1, v)
	case MetricRank5:
		m.Rank5 = append(m.Rank5, v)
	}
}

// Parse reads a combined log. A line holding only a dataset name starts that dataset's section;
// lines starting with a metric name carry the first decimal number on them. Lines may be of any
// length.
func Parse(r io.Reader, datasets []string) (map[string]*Metrics, error) {
	parsed := map[string]*Metrics{}
	var current *Metrics
	reader := bufio.NewReader(r)
	for lineno := 1; ; lineno++ {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, errors.Wrap(readErr, "reading results")
		}
		if readErr == io.EOF && raw == "" {
			return parsed, nil
		}

		line := strings.TrimSpace(raw)
		if slices.Contains(datasets, line) {
			current = &Metrics{}
			parsed[line] = current
		} else if err := parseMetric(current, line, lineno); err != nil {
			return nil, err
		}
		if readErr == io.EOF {
			return parsed, nil
		}
	}
}

func parseMetric(current *Metrics, line string, lineno int) error {
	for _, metric := range []string{MetricMAP, MetricRank1, MetricRank5} {
		if !strings.HasPrefix(line, metric) {
			continue
		}
		if current == nil {
			logger.Context{"line": lineno, "metric": metric}.Entry().
				Warn("ignoring metric outside of a dataset section")
			return nil
		}
		match := metricValue.FindString(line)
		if match == "" {
			return nil
		}
		v, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return errors.Wrapf(err, "line %d", lineno)
		}
		current.add(metric, v)
		return nil
	}
	return nil
}

// Best is the snapshot with the highest Rank-1 of one dataset.
type Best struct {
	Dataset  string
	Found    bool
	Snapshot int
	MAP      float64
	Rank1    float64
	Rank5    float64
	// Partial is set when the snapshot lacks a mAP or Rank-5 value.
	Partial bool
}

// Fields renders the mAP, Rank-1, Rank-5 and snapshot fields of the summary.
func (b Best) Fields() []string {
	if !b.Found {
		return []string{Missing, Missing, Missing, Missing}
	}
	mAP, rank5 := formatFloat(b.MAP), formatFloat(b.Rank5)
	if b.Partial {
		if b.MAP < 0 {
			mAP = Missing
		}
		if b.Rank5 < 0 {
			rank5 = Missing
		}
	}
	return []string{mAP, formatFloat(b.Rank1), rank5, strconv.Itoa(b.Snapshot)}
}

// Select picks the best snapshot of a dataset. Ties go to the earliest snapshot.
func Select(dataset string, m *Metrics) Best {
	best := Best{Dataset: dataset}
	if m == nil || len(m.Rank1) == 0 {
		return best
	}
	best.Found = true
	for i, v := range m.Rank1 {
		if v > m.Rank1[best.Snapshot] {
			best.Snapshot = i
		}
	}
	best.Rank1 = m.Rank1[best.Snapshot]
	best.MAP, best.Rank5 = -1, -1
	if best.Snapshot < len(m.MAP) {
		best.MAP = m.MAP[best.Snapshot]
	}
	if best.Snapshot < len(m.Rank5) {
		best.Rank5 = m.Rank5[best.Snapshot]
	}
	best.Partial = best.MAP < 0 || best.Rank5 < 0
	return best
}

// Summary is the best result of each dataset, ordered by name.
type Summary []Best

// Summarize selects the best snapshot of every dataset.
func Summarize(parsed map[string]*Metrics, datasets []string) Summary {
	names := slices.Clone(datasets)
	slices.Sort(names)
	summary := make(Summary, 0, len(names))
	for _, name := range names {
		summary = append(summary, Select(name, parsed[name]))
	}
	return summary
}

// String renders the summary as a line of dataset names followed by a line of
// mAP;top1;top5;snapshot; groups, preceded by a newline.
func (s Summary) String() string {
	var names, values strings.Builder
	for _, b := range s {
		names.WriteString(b.Dataset + " ")
		for _, f := range b.Fields() {
			values.WriteString(f + ";")
		}
	}
	return fmt.Sprintf("\n%s\n%s", names.String(), values.String())
}

// SummarizeFile summarizes a combined log and, if asked, appends the summary to it.
func SummarizeFile(path string, datasets []string, appendToLog bool) (Summary, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	parsed, err := Parse(f, datasets)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	summary := Summarize(parsed, datasets)
	if !appendToLog {
		return summary, nil
	}
	out, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s for append", path)
	}
	defer out.Close()
	if _, err := io.WriteString(out, summary.String()); err != nil {
		return nil, errors.Wrapf(err, "appending summary to %s", path)
	}
	return summary, out.Close()
}

// formatFloat keeps a decimal point on whole numbers, the way the trainer prints them.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
