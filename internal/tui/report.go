package tui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/simdriver/internal/script"
)

// Action status values shown in a run report.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// ReportHeaders are the columns of a run report.
func ReportHeaders() []string {
	return []string{"#", "ACTION", "TARGET", "STATUS", "DETAIL"}
}

// ActionLabel turns an action type like "waitForElementToDisappear" into
// "Wait For Element To Disappear".
func ActionLabel(t script.ActionType) string {
	var words []string
	var b strings.Builder
	for _, r := range string(t) {
		if unicode.IsUpper(r) && b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		words = append(words, b.String())
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// ReportRows lays out one row per action of s. Actions after the first
// failure, which the runner never reached, are reported as skipped.
func ReportRows(s *script.Script, r *script.ScriptResult) [][]string {
	byIndex := make(map[int]script.ActionResult, len(r.Results))
	for _, ar := range r.Results {
		byIndex[ar.ActionIndex] = ar
	}

	rows := make([][]string, 0, len(s.Actions))
	for i, a := range s.Actions {
		status, detail := StatusSkipped, ""
		if ar, ok := byIndex[i]; ok {
			status, detail = StatusFailed, ar.Error
			if ar.Success {
				status, detail = StatusPassed, resultDetail(ar)
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			ActionLabel(a.Type()),
			script.Subject(a),
			status,
			detail,
		})
	}
	return rows
}

// StyleReportRows colors the status column of rows for terminal output.
func StyleReportRows(rows [][]string) [][]string {
	styles := NewOutputStyles()
	out := make([][]string, len(rows))
	for i, row := range rows {
		styled := append([]string(nil), row...)
		switch row[3] {
		case StatusPassed:
			styled[3] = styles.Success.Render("✓ " + row[3])
		case StatusFailed:
			styled[3] = styles.Error.Render("✗ " + row[3])
		case StatusSkipped:
			styled[3] = styles.Dim.Render("○ " + row[3])
		}
		out[i] = styled
	}
	return out
}

func resultDetail(ar script.ActionResult) string {
	switch {
	case ar.Value != nil:
		return fmt.Sprintf("value=%q", *ar.Value)
	case ar.Frame != nil:
		return fmt.Sprintf("frame=(%g,%g %gx%g)", ar.Frame.X, ar.Frame.Y, ar.Frame.Width, ar.Frame.Height)
	case ar.ScreenshotPath != "":
		return ar.ScreenshotPath
	case len(ar.Properties) > 0:
		return fmt.Sprintf("%d properties", len(ar.Properties))
	default:
		return ""
	}
}
