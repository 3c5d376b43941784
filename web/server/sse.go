package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// sseWriter writes server-sent events. It is used from a single goroutine.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// send writes one event. Multi-line data is split into several data fields.
func (s *sseWriter) send(event, data string) {
	fmt.Fprintf(s.w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(s.w, "data: %s\n", line)
	}
	fmt.Fprint(s.w, "\n")
	s.flusher.Flush()
}

func (s *sseWriter) sendJSON(event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.send("error", fmt.Sprintf("Failed to encode %s event: %v", event, err))
		return
	}
	s.send(event, string(data))
}
