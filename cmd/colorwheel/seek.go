package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/gwillem/colorwheel/pkg/wheel"
)

type SeekCommand struct {
	Color string `long:"color" description:"Color to bring into the field (R, Y, B or G)"`
}

func (c *SeekCommand) Execute(args []string) error {
	code := strings.ToUpper(c.Color)
	if code == "" {
		var err error
		if code, err = askColor(); err != nil {
			return err
		}
	}
	if len(code) != 1 {
		return fmt.Errorf("seek color: %w: %q", wheel.ErrInvalidColor, c.Color)
	}

	rg, err := openRig()
	if err != nil {
		fail(err)
	}
	defer rg.Close()

	log.SetFlags(0)
	err = runHeadless(rg.runner, func(ctx context.Context) error {
		return rg.runner.SeekColor(ctx, code[0])
	})
	if err != nil {
		return err
	}

	tm := rg.runner.Telemetry()
	fmt.Printf("%s is under the sensor after %d ticks\n", tm.Color, tm.Ticks)
	return nil
}

// askColor prompts for a target color.
func askColor() (string, error) {
	var options []huh.Option[string]
	for _, col := range wheel.Colors() {
		options = append(options, huh.NewOption(colorBlock(col)+" "+col.String(), string(col.Char())))
	}

	var code string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which color should end up in the field?").
				Options(options...).
				Value(&code),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return code, nil
}
