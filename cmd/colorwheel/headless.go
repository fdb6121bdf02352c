package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gwillem/colorwheel/pkg/spinner"
	"github.com/gwillem/colorwheel/pkg/wheel"
)

var (
	errStalled     = errors.New("wheel stalled")
	errInterrupted = errors.New("interrupted")
)

// runHeadless starts one operation and runs the control loop until it
// stops, stalls or is interrupted. Runner logs go to the standard logger.
func runHeadless(r *spinner.Runner, begin func(ctx context.Context) error) error {
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stopSignals()

	if err := begin(sigCtx); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(loopCtx) }()

	finish := func(result error) error {
		cancel()
		<-done
		drainLogs(r)
		return result
	}

	for {
		select {
		case <-sigCtx.Done():
			return finish(errInterrupted)
		case line := <-r.Logs():
			log.Println(line)
		case s := <-r.States():
			switch s.State {
			case wheel.Stopped:
				return finish(nil)
			case wheel.Idle:
				return finish(fmt.Errorf("%w after %s", errStalled, s.Stalled))
			}
		}
	}
}

func drainLogs(r *spinner.Runner) {
	for {
		select {
		case line := <-r.Logs():
			log.Println(line)
		default:
			return
		}
	}
}
