/*
main.go - roomctl: developer CLI for the booking API

PURPOSE:
  A thin HTTP client over the five public operations. It never touches the
  ledger files directly; everything goes through the running server.

USAGE:
  roomctl rooms                                  List rooms
  roomctl search <date> <start> <end>            Availability in a window
  roomctl book <user> <room> <start> <end> [-g]  Create a booking
  roomctl mine <user>                            List a user's bookings
  roomctl cancel <booking-id>                    Cancel a booking

API RESOLUTION (highest wins):
  -api flag > STUDY_API env > http://127.0.0.1:8080

EXIT CODES:
  0  success
  1  API returned an error (the structured envelope is rendered)
  2  API unreachable / usage error
*/
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultAPI = "http://127.0.0.1:8080"

var client = &http.Client{Timeout: 5 * time.Second}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "rooms":
		os.Exit(cmdRooms(args))
	case "search":
		os.Exit(cmdSearch(args))
	case "book":
		os.Exit(cmdBook(args))
	case "mine":
		os.Exit(cmdMine(args))
	case "cancel":
		os.Exit(cmdCancel(args))
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `roomctl - study room booking client

Commands:
  rooms                                         List rooms
  search <date> <start> <end>                   YYYY-MM-DD HH:MM HH:MM
  book <user> <room> <start-iso> <end-iso>      -g/--group-size (default 1)
  mine <user>                                   List a user's bookings
  cancel <booking-id>                           Cancel a booking

Options (every command):
  -api <url>    Base API URL (or set STUDY_API; default `+defaultAPI+`)
`)
}

// =============================================================================
// COMMANDS
// =============================================================================

func cmdRooms(args []string) int {
	fs, base := newFlagSet("rooms", args)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	return get(*base + "/rooms")
}

func cmdSearch(args []string) int {
	fs, base := newFlagSet("search", args)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) != 3 {
		fmt.Fprintln(os.Stderr, "usage: roomctl search <date> <start> <end>")
		return 2
	}
	return get(fmt.Sprintf("%s/search?date=%s&start=%s&end=%s", *base, rest[0], rest[1], rest[2]))
}

func cmdBook(args []string) int {
	fs, base := newFlagSet("book", args)
	groupSize := fs.Int("group-size", 1, "group size")
	fs.IntVar(groupSize, "g", 1, "group size (shorthand)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) != 4 {
		fmt.Fprintln(os.Stderr, "usage: roomctl book <user> <room> <start-iso> <end-iso> [-g N]")
		return 2
	}

	var userID, roomID int
	if _, err := fmt.Sscanf(rest[0], "%d", &userID); err != nil {
		fmt.Fprintln(os.Stderr, "user must be an integer")
		return 2
	}
	if _, err := fmt.Sscanf(rest[1], "%d", &roomID); err != nil {
		fmt.Fprintln(os.Stderr, "room must be an integer")
		return 2
	}

	payload, _ := json.Marshal(map[string]any{
		"user_id":    userID,
		"room_id":    roomID,
		"start":      rest[2],
		"end":        rest[3],
		"group_size": *groupSize,
	})
	resp, err := client.Post(*base+"/bookings", "application/json", bytes.NewReader(payload))
	if err != nil {
		return unreachable(*base, err)
	}
	defer resp.Body.Close()
	return render(resp, http.StatusCreated)
}

func cmdMine(args []string) int {
	fs, base := newFlagSet("mine", args)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: roomctl mine <user>")
		return 2
	}
	return get(fmt.Sprintf("%s/users/%s/bookings", *base, rest[0]))
}

func cmdCancel(args []string) int {
	fs, base := newFlagSet("cancel", args)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: roomctl cancel <booking-id>")
		return 2
	}

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/bookings/%s", *base, rest[0]), nil)
	resp, err := client.Do(req)
	if err != nil {
		return unreachable(*base, err)
	}
	defer resp.Body.Close()
	return render(resp, http.StatusOK)
}

// =============================================================================
// HELPERS
// =============================================================================

func newFlagSet(name string, _ []string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	base := fs.String("api", resolveAPI(), "base API URL")
	return fs, base
}

// resolveAPI applies the default; the -api flag overrides it per command.
func resolveAPI() string {
	if env := os.Getenv("STUDY_API"); env != "" {
		return env
	}
	return defaultAPI
}

func get(url string) int {
	resp, err := client.Get(url)
	if err != nil {
		return unreachable(url, err)
	}
	defer resp.Body.Close()
	return render(resp, http.StatusOK)
}

func unreachable(base string, err error) int {
	fmt.Fprintf(os.Stderr, "Cannot reach API at %s: %v\n", base, err)
	return 2
}

// render pretty-prints a success payload, or the structured error envelope
// on failure.
func render(resp *http.Response, expect int) int {
	body, _ := io.ReadAll(resp.Body)
	reqID := resp.Header.Get("X-Request-ID")

	if resp.StatusCode == expect {
		fmt.Println(pretty(body))
		if reqID != "" {
			fmt.Fprintf(os.Stderr, "(request_id: %s)\n", reqID)
		}
		return 0
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Hint    string `json:"hint"`
			Status  int    `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		fmt.Fprintf(os.Stderr, "[%d] %s: %s\n", envelope.Error.Status, envelope.Error.Code, envelope.Error.Message)
		if envelope.Error.Hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", envelope.Error.Hint)
		}
	} else {
		fmt.Fprintf(os.Stderr, "%d %s\n%s\n", resp.StatusCode, http.StatusText(resp.StatusCode), string(body))
	}
	if reqID != "" {
		fmt.Fprintf(os.Stderr, "(request_id: %s)\n", reqID)
	}
	return 1
}

func pretty(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
