package menu

import (
	"fmt"
	"html"
	"strings"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/catalog"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/chat"
)

// Button labels.
const (
	LabelClose  = "✖ Close"
	LabelBack   = "« Back"
	LabelSelect = "✅ Select"
)

// RowLabel is the list row text of an entry: its name, followed by the
// bracketed beta marker when it has one.
func RowLabel(e catalog.Entry) string {
	if !e.HasBeta() {
		return e.Name
	}
	return fmt.Sprintf("%s [%s]", e.Name, e.BetaLabel)
}

// ListView renders one row per entry in catalog order, then a close row.
func ListView(c catalog.Catalog) chat.View {
	rows := make([][]chat.Button, 0, len(c)+1)
	for i, e := range c {
		rows = append(rows, []chat.Button{{Label: RowLabel(e), Data: DetailData(e.Name, i)}})
	}
	rows = append(rows, []chat.Button{{Label: LabelClose, Data: CloseData()}})

	return chat.View{
		Text: fmt.Sprintf("<b>Choose a model</b>\n%d available. Tap one to see its features.", len(c)),
		Rows: rows,
	}
}

// DetailView renders a single entry with Back and Select buttons. index is
// the entry's position, used when its name does not fit a payload.
func DetailView(e catalog.Entry, index int) chat.View {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(e.Name))
	b.WriteString("</b>")
	if e.HasBeta() {
		b.WriteString(" <i>[")
		b.WriteString(html.EscapeString(e.BetaLabel))
		b.WriteString("]</i>")
	}
	b.WriteString("\n\n")

	if len(e.Features) == 0 {
		b.WriteString("No features listed.")
	} else {
		b.WriteString("Features:")
		for _, f := range e.Features {
			b.WriteString("\n• ")
			b.WriteString(html.EscapeString(f))
		}
	}

	return chat.View{
		Text: b.String(),
		Rows: [][]chat.Button{{
			{Label: LabelBack, Data: BackData()},
			{Label: LabelSelect, Data: SelectData(e.Name, index)},
		}},
	}
}
