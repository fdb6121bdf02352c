package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/colorwheel/pkg/journal"
)

type HistoryCommand struct {
	Limit int `long:"limit" short:"n" default:"20" description:"Number of operations to show"`
}

var outcomeStyles = map[string]lipgloss.Style{
	journal.OutcomeCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1),
	journal.OutcomeCanceled:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	journal.OutcomeStalled:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1),
}

func (c *HistoryCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	if cfg.Journal == "" {
		fail(fmt.Errorf("no journal configured in %s", opts.Config))
	}

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		fail(fmt.Errorf("open journal: %w", err))
	}
	defer j.Close()

	ops, err := j.Recent(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		fmt.Println(dimStyle.Render("No operations recorded yet."))
		return nil
	}

	fmt.Println(renderHistory(ops))
	return nil
}

func renderHistory(ops []journal.Operation) string {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		request := op.Target
		if op.Kind == journal.KindSpin {
			request = fmt.Sprintf("%d", op.Requested)
		}
		rows = append(rows, []string{
			op.StartedAt.Local().Format("2006-01-02 15:04:05"),
			op.Kind,
			request,
			op.Outcome,
			fmt.Sprintf("%d/%d", op.Accepted, op.Skipped),
			op.Duration().Round(time.Millisecond).String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Started", "Kind", "Request", "Outcome", "Counted/Skipped", "Took").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 3 && row >= 0 && row < len(ops) {
				if s, ok := outcomeStyles[ops[row].Outcome]; ok {
					return s
				}
			}
			return cellStyle
		})
	return t.Render()
}
