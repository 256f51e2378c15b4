package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/pkg/reviewdto"
)

var (
	colorMuted  = lipgloss.Color("#6C7A89")
	colorBorder = lipgloss.Color("#3B5B63")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	textStyle   = cellStyle.Width(64)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
)

var classColors = map[string]lipgloss.Color{
	"brilliant":  lipgloss.Color("#1BACA6"),
	"great":      lipgloss.Color("#5C8BB0"),
	"best":       lipgloss.Color("#96BC4B"),
	"excellent":  lipgloss.Color("#96BC4B"),
	"good":       lipgloss.Color("#96AF8B"),
	"book":       lipgloss.Color("#A88865"),
	"inaccuracy": lipgloss.Color("#F7C045"),
	"mistake":    lipgloss.Color("#E58F2A"),
	"blunder":    lipgloss.Color("#CA3431"),
}

func classStyle(class string) lipgloss.Style {
	if c, ok := classColors[class]; ok {
		return cellStyle.Foreground(c)
	}
	if strings.Contains(class, "mate") {
		return cellStyle.Foreground(lipgloss.Color("#B33430")).Bold(true)
	}
	return cellStyle
}

// moveNumber is "12." for White and "12..." for Black, read from the FEN
// after the move.
func moveNumber(m reviewdto.Move) string {
	pos, err := board.FromFEN(m.FEN)
	if err != nil {
		return fmt.Sprintf("%d", m.Ply)
	}
	if m.Color == "black" {
		return fmt.Sprintf("%d...", pos.Fullmove()-1)
	}
	return fmt.Sprintf("%d.", pos.Fullmove())
}

func renderReview(name string, rev *reviewdto.Review) string {
	var sb strings.Builder

	title := fmt.Sprintf("%s  %s vs %s", name, orUnknown(rev.White), orUnknown(rev.Black))
	if rev.Result != "" {
		title += "  " + rev.Result
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteByte('\n')
	if rev.OpeningCode != "" || rev.OpeningTitle != "" {
		sb.WriteString(mutedStyle.Render(strings.TrimSpace(rev.OpeningCode + " " + rev.OpeningTitle)))
		sb.WriteByte('\n')
	}

	rows := make([][]string, 0, len(rev.Moves))
	classes := make([]string, 0, len(rev.Moves))
	for _, m := range rev.Moves {
		class := m.Classification
		if m.Grade != "" {
			class = fmt.Sprintf("%s (%s)", class, m.Grade)
		}
		comment := m.Text
		if m.BestText != "" {
			comment += " " + m.BestText
		}
		rows = append(rows, []string{moveNumber(m), m.SAN, class, comment})
		classes = append(classes, m.Classification)
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("Move", "SAN", "Class", "Comment").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2 && row >= 0 && row < len(classes):
				return classStyle(classes[row])
			case col == 3:
				return textStyle
			default:
				return cellStyle
			}
		})
	sb.WriteString(t.Render())
	sb.WriteByte('\n')

	sides := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(renderSide("White", rev.White, rev.WhiteSummary)),
		" ",
		boxStyle.Render(renderSide("Black", rev.Black, rev.BlackSummary)),
	)
	sb.WriteString(sides)
	if rev.Summary != "" {
		sb.WriteByte('\n')
		sb.WriteString(rev.Summary)
	}
	return sb.String()
}

func renderSide(color, player string, s reviewdto.Side) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", titleStyle.Render(color), orUnknown(player))
	fmt.Fprintf(&sb, "accuracy %.1f%%  acpl %.1f  rating %d", s.Accuracy, s.ACPL, s.Rating)
	if len(s.Counts) > 0 {
		keys := make([]string, 0, len(s.Counts))
		for k := range s.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s %d", k, s.Counts[k]))
		}
		sb.WriteString("\n" + mutedStyle.Render(strings.Join(parts, ", ")))
	}
	if len(s.Lost) > 0 {
		sb.WriteString("\n" + mutedStyle.Render("lost: "+strings.Join(s.Lost, ", ")))
	}
	return sb.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" || s == "?" {
		return "?"
	}
	return s
}
