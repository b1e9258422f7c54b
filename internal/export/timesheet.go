// Package export は勤怠一覧の印刷用HTMLエクスポートを提供する。
//
// 取得済みの勤怠レコードからその場で表形式のHTMLを生成するだけで、
// ファイルは永続化しない。印刷ダイアログの呼び出しはクライアント側の責務。
package export

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/hitoshi/gatehouse/internal/model"
)

// timesheetTemplate は印刷用の最小限のHTML。値は全てテンプレートの
// 自動エスケープを通る。
const timesheetTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Timesheet {{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; }
h1 { font-size: 18px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #999; padding: 4px 8px; font-size: 12px; text-align: left; }
th { background: #eee; }
tfoot td { font-weight: bold; }
</style>
</head>
<body>
<h1>Timesheet {{.Title}}</h1>
<table>
<thead>
<tr><th>Date</th><th>Employee</th><th>Shift</th><th>Clock in</th><th>Clock out</th><th>Hours</th><th>Kind</th></tr>
</thead>
<tbody>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Employee}}</td><td>{{.Shift}}</td><td>{{.ClockIn}}</td><td>{{.ClockOut}}</td><td>{{.Hours}}</td><td>{{.Kind}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="5">Total</td><td>{{.TotalHours}}</td><td></td></tr>
</tfoot>
</table>
</body>
</html>
`

var tsTmpl = template.Must(template.New("timesheet").Parse(timesheetTemplate))

type row struct {
	Date     string
	Employee string
	Shift    string
	ClockIn  string
	ClockOut string
	Hours    string
	Kind     string
}

type page struct {
	Title      string
	Rows       []row
	TotalHours string
}

// WorkedMinutes はclock_in/clock_out（"HH:MM"）から勤務時間を分で返す。
// どちらかが欠けている・形式不正・負になる場合は0。
func WorkedMinutes(clockIn, clockOut string) int {
	in, okIn := parseClock(clockIn)
	out, okOut := parseClock(clockOut)
	if !okIn || !okOut {
		return 0
	}
	minutes := out - in
	if minutes < 0 {
		return 0
	}
	return minutes
}

func parseClock(v string) (int, bool) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func formatHours(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// WriteTimesheet は勤怠レコードの一覧から印刷用HTMLをwに書き出す。
// titleは見出しに表示する期間ラベル（例: "2026-09"）。
func WriteTimesheet(w io.Writer, title string, records []model.TimeRecord) error {
	p := page{Title: title}
	total := 0

	for _, r := range records {
		minutes := WorkedMinutes(r.ClockIn, r.ClockOut)
		total += minutes

		hours := "-"
		if minutes > 0 {
			hours = formatHours(minutes)
		}

		p.Rows = append(p.Rows, row{
			Date:     orDash(r.Date),
			Employee: orDash(r.EmployeeName),
			Shift:    orDash(string(r.Shift)),
			ClockIn:  orDash(r.ClockIn),
			ClockOut: orDash(r.ClockOut),
			Hours:    hours,
			Kind:     orDash(string(r.Kind)),
		})
	}

	p.TotalHours = formatHours(total)
	return tsTmpl.Execute(w, p)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
