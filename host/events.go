package host

import (
	"github.com/gdamore/tcell/v2"

	"termview/config"
)

// OutputEvent carries child output to the main event loop.
type OutputEvent struct {
	tcell.EventTime
	Data []byte
}

// renderEvent wakes the loop to flush the render scheduler.
type renderEvent struct {
	tcell.EventTime
}

// exitEvent reports that the child has gone away.
type exitEvent struct {
	tcell.EventTime
	Err error
}

// configEvent carries a reloaded settings file.
type configEvent struct {
	tcell.EventTime
	Cfg *config.Config
	Err error
}
