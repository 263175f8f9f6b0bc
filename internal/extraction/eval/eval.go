// Package eval measures how well extraction rule sets recover statement
// fields from a corpus of saved bank mails with known answers.
package eval

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/castlemilk/cardkeeper/internal/extraction"
	"github.com/shopspring/decimal"
)

// GroundTruth is the expected extraction output for a fixture. Empty values
// mean the field must not be found.
type GroundTruth struct {
	Bank          string `json:"bank"`
	LastFour      string `json:"lastFour"`
	HolderName    string `json:"holderName"`
	Amount        string `json:"amount"`
	MinPayment    string `json:"minPayment"`
	StatementDate string `json:"statementDate"`
	DueDate       string `json:"dueDate"`
	Format        string `json:"format"`
}

// FieldCheck is one compared field.
type FieldCheck struct {
	Field string
	Want  string
	Got   string
	OK    bool
}

// Result holds the outcome of running one strategy on one fixture.
type Result struct {
	Strategy string
	Fixture  string
	Outcome  extraction.Outcome
	Checks   []FieldCheck
	Duration time.Duration
}

// Correct counts the fields that matched.
func (r *Result) Correct() int {
	n := 0
	for _, c := range r.Checks {
		if c.OK {
			n++
		}
	}
	return n
}

// Score is the fraction of fields that matched, 0 when nothing was checked.
func (r *Result) Score() float64 {
	if len(r.Checks) == 0 {
		return 0
	}
	return float64(r.Correct()) / float64(len(r.Checks))
}

// Misses lists the names of fields that did not match.
func (r *Result) Misses() []string {
	var out []string
	for _, c := range r.Checks {
		if !c.OK {
			out = append(out, c.Field)
		}
	}
	return out
}

// Compare checks extracted fields and the decoded format against truth.
func Compare(got extraction.Fields, format string, truth GroundTruth) []FieldCheck {
	return []FieldCheck{
		stringCheck("bank", truth.Bank, got.BankName),
		stringCheck("last_four", truth.LastFour, got.LastFour()),
		stringCheck("holder_name", truth.HolderName, got.HolderName),
		amountCheck("amount", truth.Amount, got.Amount),
		amountCheck("min_payment", truth.MinPayment, got.MinPayment),
		stringCheck("statement_date", truth.StatementDate, got.StatementDate),
		stringCheck("due_date", truth.DueDate, got.DueDate),
		stringCheck("format", truth.Format, format),
	}
}

func stringCheck(field, want, got string) FieldCheck {
	want, got = strings.TrimSpace(want), strings.TrimSpace(got)
	return FieldCheck{Field: field, Want: want, Got: got, OK: want == got}
}

// amountCheck compares numerically so "1200" matches "1200.00".
func amountCheck(field, want string, got *decimal.Decimal) FieldCheck {
	c := FieldCheck{Field: field, Want: strings.TrimSpace(want)}
	if got != nil {
		c.Got = got.String()
	}
	switch {
	case c.Want == "" || got == nil:
		c.OK = c.Want == "" && got == nil
	default:
		w, err := decimal.NewFromString(c.Want)
		c.OK = err == nil && w.Equal(*got)
	}
	return c
}

// Run decodes every fixture once and applies each strategy to it. Results
// are ordered by fixture, then strategy name.
func Run(dec *extraction.Decoder, strategies map[string]*extraction.Extractor, fixtures []*Fixture) []*Result {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*Result
	for _, fx := range fixtures {
		msg := dec.Decode(fx.Raw)
		for _, name := range names {
			start := time.Now()
			fields := strategies[name].Extract(msg.Text, msg.Subject, msg.From)
			results = append(results, &Result{
				Strategy: name,
				Fixture:  fx.Name,
				Outcome:  msg.Outcome,
				Checks:   Compare(fields, string(msg.Format), fx.Truth),
				Duration: time.Since(start),
			})
		}
	}
	return results
}

// FieldAccuracy returns, per strategy, the share of fixtures on which each
// field matched.
func FieldAccuracy(results []*Result) map[string]map[string]float64 {
	hits := map[string]map[string]int{}
	seen := map[string]map[string]int{}
	for _, r := range results {
		if hits[r.Strategy] == nil {
			hits[r.Strategy] = map[string]int{}
			seen[r.Strategy] = map[string]int{}
		}
		for _, c := range r.Checks {
			seen[r.Strategy][c.Field]++
			if c.OK {
				hits[r.Strategy][c.Field]++
			}
		}
	}
	out := make(map[string]map[string]float64, len(seen))
	for strategy, fields := range seen {
		out[strategy] = make(map[string]float64, len(fields))
		for field, n := range fields {
			out[strategy][field] = float64(hits[strategy][field]) / float64(n)
		}
	}
	return out
}

// PrintSummary writes a per-fixture table followed by per-strategy averages.
func PrintSummary(w io.Writer, results []*Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Strategy\tFixture\tOutcome\tMatch\tScore\tTime\tMissed")
	fmt.Fprintln(tw, "--------\t-------\t-------\t-----\t-----\t----\t------")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%.2f\t%s\t%s\n",
			r.Strategy,
			r.Fixture,
			r.Outcome,
			r.Correct(), len(r.Checks),
			r.Score(),
			r.Duration.Round(time.Microsecond),
			truncate(strings.Join(r.Misses(), ","), 40),
		)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Strategy Averages ===")

	scores := map[string][]float64{}
	for _, r := range results {
		scores[r.Strategy] = append(scores[r.Strategy], r.Score())
	}
	strategies := make([]string, 0, len(scores))
	for s := range scores {
		strategies = append(strategies, s)
	}
	sort.Strings(strategies)

	tw2 := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw2, "Strategy\tAvg Score\tFixtures")
	fmt.Fprintln(tw2, "--------\t---------\t--------")
	for _, s := range strategies {
		fmt.Fprintf(tw2, "%s\t%.3f\t%d\n", s, avg(scores[s]), len(scores[s]))
	}
	tw2.Flush()
}

func avg(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
