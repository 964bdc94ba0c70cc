package runtime

import (
	"io"
	"lum/domain"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// RenderStatus writes one row per service with its current status.
func RenderStatus(w io.Writer, services []Service, colours bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Priority", "Status"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	table.AppendBulk(lo.Map(services, func(s Service, _ int) []string {
		info := s.Info()
		status := info.Status()
		text := status.String()
		if colours {
			text = paint(status, text)
		}
		return []string{info.ID, info.Name, info.Priority.String(), text}
	}))
	table.Render()
}

// RenderIncidents writes one row per incident. Nothing is written when
// there are none.
func RenderIncidents(w io.Writer, incidents []domain.Incident, colours bool) {
	if len(incidents) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Service", "At", "Cause", "Reason"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(lo.Map(incidents, func(incident domain.Incident, _ int) []string {
		cause := string(incident.Cause)
		if colours {
			cause = color.Red.Render(cause)
		}
		return []string{incident.ServiceID, incident.At.Format(time.RFC3339), cause, incident.Reason}
	}))
	table.Render()
}

func paint(status domain.Status, text string) string {
	switch status.State {
	case domain.Started:
		return color.Green.Render(text)
	case domain.Starting, domain.Stopping:
		return color.Yellow.Render(text)
	case domain.RuntimeError:
		return color.Red.Render(text)
	default:
		return text
	}
}
