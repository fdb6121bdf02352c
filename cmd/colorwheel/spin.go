package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/gwillem/colorwheel/pkg/wheel"
)

type SpinCommand struct {
	Rotations   int `long:"rotations" default:"-1" description:"Color transitions to count"`
	Revolutions int `long:"revolutions" default:"-1" description:"Whole wheel revolutions, converted to transitions"`
}

func (c *SpinCommand) Execute(args []string) error {
	if c.Rotations >= 0 && c.Revolutions >= 0 {
		return errors.New("use either --rotations or --revolutions")
	}

	rg, err := openRig()
	if err != nil {
		fail(err)
	}
	defer rg.Close()

	n := c.Rotations
	switch {
	case c.Revolutions >= 0:
		n = wheel.Transitions(c.Revolutions, rg.cfg.SegmentsPerRevolution)
	case n < 0:
		if n, err = askRotations(rg.cfg.SegmentsPerRevolution); err != nil {
			return err
		}
	}

	log.SetFlags(0)
	err = runHeadless(rg.runner, func(ctx context.Context) error {
		return rg.runner.SpinRotations(ctx, n)
	})
	if err != nil {
		return err
	}

	tm := rg.runner.Telemetry()
	fmt.Printf("Counted %d transitions (%d out of order), %s under the sensor\n", tm.Accepted, tm.Skipped, tm.Previous)
	return nil
}

// askRotations prompts for a transition count.
func askRotations(segments int) (int, error) {
	value := strconv.Itoa(segments)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("How many color transitions?").
				Description(fmt.Sprintf("%d is one full revolution", segments)).
				Value(&value).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil {
						return errors.New("enter a whole number")
					}
					if n < 0 {
						return wheel.ErrNegativeCount
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}
