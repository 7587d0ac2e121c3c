package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/actionsum/meetnotes/internal/models"
	"github.com/actionsum/meetnotes/pkg/utils"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("247"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var columnWidths = []int{30, 10, 8, 10, 10, 9}

// Store provides the aggregated history a report is built from
type Store interface {
	GetAppSummarySince(since time.Time) ([]models.AppSummary, error)
}

// Reporter handles report generation
type Reporter struct {
	store Store
	now   func() time.Time
}

// New creates a new reporter
func New(store Store) *Reporter {
	return &Reporter{
		store: store,
		now:   time.Now,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	summaries, err := r.store.GetAppSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get app summary: %w", err)
	}

	report := &models.Report{
		Period:      *period,
		Apps:        summaries,
		GeneratedAt: r.now(),
	}

	for i := range summaries {
		summaries[i].MeetingMinutes = float64(summaries[i].MeetingSeconds) / 60.0
		summaries[i].MeetingHours = float64(summaries[i].MeetingSeconds) / 3600.0

		report.TotalDispatches += summaries[i].DispatchCount
		report.TotalFailures += summaries[i].FailedCount
		report.TotalSessions += summaries[i].SessionCount
		report.MeetingSeconds += summaries[i].MeetingSeconds
	}

	// Share of meeting time, or of dispatches when no session has ended yet
	for i := range summaries {
		switch {
		case report.MeetingSeconds > 0:
			summaries[i].Percentage = float64(summaries[i].MeetingSeconds) / float64(report.MeetingSeconds) * 100.0
		case report.TotalDispatches > 0:
			summaries[i].Percentage = float64(summaries[i].DispatchCount) / float64(report.TotalDispatches) * 100.0
		}
	}

	report.MeetingMinutes = float64(report.MeetingSeconds) / 60.0
	report.MeetingHours = float64(report.MeetingSeconds) / 3600.0

	return report, nil
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as a human-readable table
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Meeting Report - %s", report.Period.Type)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Meetings: %d session(s), %s in meetings\n", report.TotalSessions, utils.FormatRoundedUnit(report.MeetingSeconds))
	fmt.Fprintf(&b, "Dispatches: %d (%d failed)\n\n", report.TotalDispatches, report.TotalFailures)

	if len(report.Apps) == 0 {
		b.WriteString(mutedStyle.Render("No meetings recorded for this period."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(headerStyle.Render(renderRow([]string{"Application", "Dispatches", "Failed", "Sessions", "Time", "Percent"})))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", rowWidth()))
	b.WriteString("\n")

	for _, app := range report.Apps {
		row := renderRow([]string{
			truncate(app.AppName, columnWidths[0]),
			fmt.Sprintf("%d", app.DispatchCount),
			fmt.Sprintf("%d", app.FailedCount),
			fmt.Sprintf("%d", app.SessionCount),
			utils.FormatRoundedUnit(app.MeetingSeconds),
			fmt.Sprintf("%.1f%%", app.Percentage),
		})
		if app.FailedCount > 0 {
			row = failedStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func renderRow(cells []string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		style := lipgloss.NewStyle().Width(columnWidths[i])
		if i > 0 {
			style = style.Align(lipgloss.Right)
		}
		parts[i] = style.Render(cell)
	}
	return strings.Join(parts, " ")
}

func rowWidth() int {
	width := len(columnWidths) - 1
	for _, w := range columnWidths {
		width += w
	}
	return width
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
