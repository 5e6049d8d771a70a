//go:build linux

package pps

import (
	"github.com/warthog618/go-gpiocdev"
)

func requestEdgeLine(chipName string, offset int, onEdge func()) (func() error, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("gpsclock-pps"))
	if err != nil {
		return nil, err
	}
	line, err := chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			// Interrupt context: set the flag and nothing else.
			onEdge()
		}),
	)
	if err != nil {
		_ = chip.Close()
		return nil, err
	}
	return func() error {
		err1 := line.Close()
		_ = chip.Close()
		return err1
	}, nil
}
