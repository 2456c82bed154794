package midiin

import (
	"fmt"
	"log/slog"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Ports lists the names of the available input ports. A driver must be
// registered by the program, e.g. by importing drivers/rtmididrv.
func Ports() []string {
	ins := gomidi.GetInPorts()

	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}

	return names
}

// Input is an open MIDI input port feeding a Router.
type Input struct {
	port   drivers.In
	stop   func()
	logger *slog.Logger
}

// Open connects the first input port whose name contains name,
// case-insensitively, to r.
func Open(name string, r *Router, logger *slog.Logger) (*Input, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var found drivers.In

	for _, in := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			found = in
			break
		}
	}

	if found == nil {
		return nil, fmt.Errorf("MIDI input %q not found", name)
	}

	if err := found.Open(); err != nil {
		return nil, fmt.Errorf("open MIDI input %q: %w", found.String(), err)
	}

	stop, err := gomidi.ListenTo(found, func(msg gomidi.Message, _ int32) {
		r.Handle(msg)
	}, gomidi.HandleError(func(listenErr error) {
		logger.Warn("MIDI listener error", "device", found.String(), "err", listenErr)
	}))
	if err != nil {
		_ = found.Close()
		return nil, fmt.Errorf("listen to MIDI input %q: %w", found.String(), err)
	}

	logger.Info("MIDI input connected", "device", found.String())

	return &Input{port: found, stop: stop, logger: logger}, nil
}

// Name returns the port name.
func (in *Input) Name() string { return in.port.String() }

// Close stops listening and closes the port.
func (in *Input) Close() error {
	if in.stop != nil {
		in.stop()
		in.stop = nil
	}

	in.logger.Info("MIDI input closed", "device", in.port.String())

	return in.port.Close()
}
