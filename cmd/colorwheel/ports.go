package main

import (
	"fmt"
	"strings"

	"go.bug.st/serial"
)

type PortsCommand struct {
	All bool `long:"all" description:"Include Bluetooth ports"`
}

func (c *PortsCommand) Execute(args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("list ports: %w", err)
	}

	found := 0
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if !c.All && strings.Contains(port, "Bluetooth") {
			continue
		}
		fmt.Println(port)
		found++
	}
	if found == 0 {
		fmt.Println(dimStyle.Render("No serial ports found. Is the motor controller plugged in?"))
	}
	return nil
}
