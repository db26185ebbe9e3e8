package report

import (
	"fmt"
	"strconv"

	"github.com/newthinker/stagestate/internal/core"
)

// Summary tallies the results of one run.
type Summary struct {
	Total    int     `json:"total" yaml:"total"`
	Staged   int     `json:"staged" yaml:"staged"`
	Unstaged int     `json:"unstaged" yaml:"unstaged"`
	Unknown  int     `json:"unknown" yaml:"unknown"`
	Failed   int     `json:"failed" yaml:"failed"`
	Percent  float64 `json:"percent_staged" yaml:"percent_staged"`
}

// Summarize counts staged files. Percent is 100*staged/total, unrounded.
// An empty result set fails with core.ErrNoInput.
func Summarize(results []core.Result) (Summary, error) {
	if len(results) == 0 {
		return Summary{}, core.ErrNoInput
	}

	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Status.Staged():
			s.Staged++
		case r.Status == core.StatusNearline:
			s.Unstaged++
		case r.Status == core.StatusError:
			s.Failed++
		default:
			s.Unknown++
		}
	}
	s.Percent = 100 * float64(s.Staged) / float64(s.Total)

	return s, nil
}

// Line is the summary printed after the per-file status lines.
func (s Summary) Line() string {
	return fmt.Sprintf("%s percent of files staged", strconv.FormatFloat(s.Percent, 'f', -1, 64))
}
