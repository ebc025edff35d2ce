package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/buzzrelay/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format  string
	out     io.Writer
	errOut  io.Writer
	verbose bool
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer, verbose bool) *Output {
	return &Output{format: format, out: out, errOut: errOut, verbose: verbose}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message. Suppressed in JSON mode.
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		return
	}
	_, _ = fmt.Fprintln(o.out, msg)
}

// PrintEvent outputs a server push. JSON mode writes the frame as one line.
func (o *Output) PrintEvent(msg ServerMessage) {
	if o.format == "json" {
		_, _ = fmt.Fprintln(o.out, string(msg.Raw))
		return
	}
	if line := o.describe(msg); line != "" {
		_, _ = fmt.Fprintln(o.out, line)
	}
}

// PrintPlayers lists the last known players of the room
func (o *Output) PrintPlayers(players []PlayerInfo) {
	if o.format == "json" {
		o.printJSON(players)
		return
	}
	if len(players) == 0 {
		_, _ = fmt.Fprintln(o.out, "No players yet")
		return
	}
	for _, p := range players {
		_, _ = fmt.Fprintf(o.out, "  - %s (%s)\n", p.Name, p.ID)
	}
}

func (o *Output) describe(msg ServerMessage) string {
	switch msg.Type {
	case protocol.TypeConnectionEstablished:
		if o.verbose {
			return fmt.Sprintf("Connected as %s", msg.ConnectionID)
		}
		return ""
	case protocol.TypeRoomCreated:
		return fmt.Sprintf("Room created: %s (share this code with players)", msg.RoomCode)
	case protocol.TypeRoomJoined:
		return fmt.Sprintf("Joined room %s as %s", msg.RoomCode, msg.PlayerName)
	case protocol.TypePlayerJoined:
		name := ""
		if msg.Player != nil {
			name = msg.Player.Name
		}
		return fmt.Sprintf("%s joined (%s)", name, countPlayers(msg.Players))
	case protocol.TypePlayerLeft:
		return fmt.Sprintf("Player %s left (%s)", msg.PlayerID, countPlayers(msg.Players))
	case protocol.TypePlayerKicked:
		if msg.KickedPlayerName == "" {
			return fmt.Sprintf("No such player (%s)", countPlayers(msg.Players))
		}
		return fmt.Sprintf("Kicked %s (%s)", msg.KickedPlayerName, countPlayers(msg.Players))
	case protocol.TypeKickedFromRoom:
		return msg.Message
	case protocol.TypeBuzzersReleased:
		return "BUZZERS RELEASED!"
	case protocol.TypeBuzzersReset:
		return "Buzzers reset"
	case protocol.TypeBuzzAcknowledged:
		return fmt.Sprintf("Buzzed in at %s", formatSeconds(msg.Time))
	case protocol.TypeBuzzResults:
		return formatResults(msg.Results)
	case protocol.TypeRoomClosed:
		return fmt.Sprintf("Room %s closed (%s)", msg.RoomCode, msg.Reason)
	case protocol.TypeError:
		return "Error: " + msg.Message
	default:
		return string(msg.Raw)
	}
}

func countPlayers(players []PlayerInfo) string {
	if len(players) == 1 {
		return "1 player"
	}
	return fmt.Sprintf("%d players", len(players))
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3fs", seconds)
}

func formatResults(results []ResultInfo) string {
	var b strings.Builder
	b.WriteString("Results:")
	for i, r := range results {
		fmt.Fprintf(&b, "\n  %d. %-20s %s", i+1, r.PlayerName, formatSeconds(r.Time))
	}
	return b.String()
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Room response type (matches API)
type Room struct {
	Code       string       `json:"code"`
	HostName   string       `json:"host_name"`
	Active     bool         `json:"active"`
	CreatedAt  time.Time    `json:"created_at"`
	Released   bool         `json:"released"`
	ReleasedAt *time.Time   `json:"released_at,omitempty"`
	Players    []RoomPlayer `json:"players"`
	Results    []BuzzResult `json:"results"`
}

// RoomPlayer response type
type RoomPlayer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"is_host"`
	JoinedAt time.Time `json:"joined_at"`
}

// BuzzResult response type
type BuzzResult struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Time       float64 `json:"time"`
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

func (o *Output) printRoom(r Room) {
	_, _ = fmt.Fprintf(o.out, "Room: %s\n", r.Code)
	_, _ = fmt.Fprintf(o.out, "Host: %s\n", r.HostName)
	if !r.Active {
		_, _ = fmt.Fprintln(o.out, "Status: closed (host left)")
	}
	if r.Released {
		_, _ = fmt.Fprintln(o.out, "Buzzers: released")
	} else {
		_, _ = fmt.Fprintln(o.out, "Buzzers: locked")
	}

	_, _ = fmt.Fprintf(o.out, "Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		hostStr := ""
		if p.IsHost {
			hostStr = " [host]"
		}
		_, _ = fmt.Fprintf(o.out, "  - %s (%s)%s\n", p.Name, p.ID, hostStr)
	}

	if len(r.Results) > 0 {
		results := make([]ResultInfo, len(r.Results))
		for i, res := range r.Results {
			results[i] = ResultInfo{PlayerID: res.PlayerID, PlayerName: res.PlayerName, Time: res.Time}
		}
		_, _ = fmt.Fprintln(o.out, formatResults(results))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.out, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.out, "Connections: %d\n", h.Connections)
	_, _ = fmt.Fprintf(o.out, "Rooms: %d\n", h.Rooms)
}
