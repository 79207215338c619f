package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/donovanhide/eventsource"
	"github.com/rs/zerolog/log"
)

// watchstory follows a story's SSE status feed and prints page progress until
// the run reaches a terminal status.

type statusEvent struct {
	StoryID  string  `json:"story_id"`
	Title    string  `json:"title"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Pages    []struct {
		PageNumber int    `json:"page_number"`
		Status     string `json:"status"`
	} `json:"pages"`
}

func main() {
	server := flag.String("server", "http://localhost:8080", "story service base URL")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: watchstory [-server URL] <story-id>")
		os.Exit(2)
	}
	storyID := flag.Arg(0)

	url := fmt.Sprintf("%s/api/story/%s/events", *server, storyID)
	stream, err := eventsource.Subscribe(url, "")
	if err != nil {
		log.Fatal().Err(err).Str("url", url).Msg("Failed to subscribe to story events")
	}

	for {
		select {
		case event, ok := <-stream.Events:
			if !ok {
				log.Info().Msg("Event stream closed")
				return
			}
			var status statusEvent
			if err := json.Unmarshal([]byte(event.Data()), &status); err != nil {
				log.Warn().Err(err).Msg("Skipping malformed event")
				continue
			}
			printStatus(status)
			if isTerminal(status.Status) {
				return
			}
		case err := <-stream.Errors:
			log.Warn().Err(err).Msg("Stream error, reconnecting")
		}
	}
}

func printStatus(status statusEvent) {
	completed := 0
	failed := 0
	for _, page := range status.Pages {
		switch page.Status {
		case "completed":
			completed++
		case "failed":
			failed++
		}
	}
	log.Info().
		Str("story_id", status.StoryID).
		Str("status", status.Status).
		Float64("progress", status.Progress).
		Int("completed_pages", completed).
		Int("failed_pages", failed).
		Msg(status.Title)
}

func isTerminal(status string) bool {
	switch status {
	case "completed", "completed_with_errors", "failed", "cancelled":
		return true
	}
	return false
}
