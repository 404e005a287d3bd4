package ops

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/platform/errors/i18n"
	"github.com/louisbranch/campaignops/internal/services/ops/app"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/finance"
	"github.com/louisbranch/campaignops/internal/services/ops/storage"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	refusedBox  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)
)

func writeReport(out io.Writer, svc *app.Service, last *app.AdvanceResult, locale string) {
	c := svc.Campaign()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Campaign status"))
	b.WriteString("\n")
	row(&b, "Date", c.Clock.Today().Format(time.DateOnly))
	row(&b, "Balance", finance.FormatAmount(c.Ledger.Balance())+" C-bills")
	row(&b, "Astechs", fmt.Sprintf("%d (%d/%d minutes)", svc.AstechCount(), c.Astechs.Available(), c.Astechs.Capacity()+c.Astechs.Overtime()))
	row(&b, "Medics", fmt.Sprintf("%d", c.Medics.Capacity()))

	tasks := svc.Tasks(app.TaskFilter{})
	row(&b, "Open tasks", fmt.Sprintf("%d", len(tasks)))
	for _, task := range tasks {
		b.WriteString(fmt.Sprintf("  - %s [%s] %s\n", task.Name, task.Kind, task.State))
	}
	if items := svc.Shopping().Items(); len(items) > 0 {
		row(&b, "Shopping list", fmt.Sprintf("%d", len(items)))
		for _, item := range items {
			b.WriteString(fmt.Sprintf("  - %s x%d (wait %d days)\n", item.Work.Name, item.Quantity, item.DaysToWait))
		}
	}
	fmt.Fprint(out, b.String())

	if last != nil && !last.Committed() && last.Reason != nil {
		fmt.Fprintln(out, refusedBox.Render(refusal(last.Reason.Err(), locale)))
	}
	for _, notice := range lastNotices(last) {
		fmt.Fprintln(out, noticeStyle.Render(notice))
	}
}

// refusal renders a coded domain error as its gRPC status: code, reason and
// localized message. Uncoded errors render as plain text.
func refusal(err error, locale string) string {
	var coded *apperrors.Error
	if !errors.As(err, &coded) {
		return err.Error()
	}
	text := i18n.GetCatalog(locale).Format(string(coded.Code), coded.Metadata)
	st, ok := status.FromError(coded.ToGRPCStatus(locale, text))
	if !ok {
		return text
	}
	reason, message := string(coded.Code), st.Message()
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			reason = d.Reason
		case *errdetails.LocalizedMessage:
			message = d.Message
		}
	}
	return fmt.Sprintf("%s (%s)\n%s", reason, st.Code(), message)
}

func lastNotices(last *app.AdvanceResult) []string {
	if last == nil {
		return nil
	}
	return last.Notices
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", label)))
	b.WriteString(value)
	b.WriteString("\n")
}

func writeWork(out io.Writer, entries []storage.WorkEntry) {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Work journal (%d)", len(entries))))
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-20s %-12s roll %2d vs %-6s margin %+d  %dm\n",
			e.Day.Format(time.DateOnly), e.TaskName, e.Outcome, e.Roll, e.Target, e.Margin, e.Minutes)
	}
}

func writeDays(out io.Writer, entries []storage.DayEntry) {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Day journal (%d)", len(entries))))
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-10s", e.Day.Format(time.DateOnly), e.State)
		if e.Reason != "" {
			line += "  " + e.Reason
		}
		fmt.Fprintln(out, line)
	}
}

func writeBonus(out io.Writer, entries []storage.BonusEntry) {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Bonus journal (%d)", len(entries))))
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-20s %-9s %s", e.Day.Format(time.DateOnly), e.TaskName, e.Source, e.ContractID)
		if e.Inconsistent {
			line += "  " + noticeStyle.Render("inconsistent: "+e.Detail)
		}
		fmt.Fprintln(out, line)
	}
}
