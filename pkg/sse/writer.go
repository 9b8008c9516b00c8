package sse

import (
	"fmt"
	"io"
	"strings"
)

// WriteEvent serializes one event in SSE wire format, terminated by a blank
// line. Multi-line data is split into repeated "data:" fields per the spec, so
// WriteEvent followed by Reader.Next round-trips.
func WriteEvent(w io.Writer, ev *Event) error {
	var b strings.Builder

	if ev.Type != "" {
		fmt.Fprintf(&b, "event: %s\n", ev.Type)
	}
	if ev.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", ev.ID)
	}
	for _, line := range strings.Split(ev.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
