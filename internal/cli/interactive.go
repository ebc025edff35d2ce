package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/protocol"
)

const hostHelp = `Commands:
  release         release the buzzers
  reset           reset the buzzers and clear results
  kick <player>   remove a player by id or name
  players         list players in the room
  quit            leave (closes the room for players)`

const playerHelp = `Commands:
  buzz (or b)     buzz in
  players         list players in the room
  quit            leave the room`

// interactive drives one connection from line commands until the room ends
type interactive struct {
	conn     *Conn
	out      *Output
	isHost   bool
	roomCode string
	players  []PlayerInfo
}

// run sends first, then interleaves server messages with commands read from in.
// It returns when the user quits, input ends, or the server ends the session.
func (s *interactive) run(ctx context.Context, first protocol.Inbound, in io.Reader) error {
	if err := s.conn.Send(first); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, in)

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-s.conn.Messages():
			if !ok {
				if err := s.conn.Err(); err != nil {
					return fmt.Errorf("connection lost: %w", err)
				}
				s.out.PrintMessage("Disconnected")
				return nil
			}
			done, err := s.handle(msg)
			if err != nil || done {
				return err
			}

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := s.command(line)
			if err != nil || quit {
				return err
			}
		}
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// handle prints a server message and tracks room state.
// done is true once the server has ended this session.
func (s *interactive) handle(msg ServerMessage) (done bool, err error) {
	switch msg.Type {
	case protocol.TypeError:
		if s.roomCode == "" {
			return true, errors.New(msg.Message)
		}
	case protocol.TypeRoomCreated, protocol.TypeRoomJoined:
		s.roomCode = msg.RoomCode
	case protocol.TypePlayerJoined, protocol.TypePlayerLeft, protocol.TypePlayerKicked:
		s.players = msg.Players
	}

	s.out.PrintEvent(msg)

	if msg.Type == protocol.TypeRoomCreated {
		s.out.PrintMessage(hostHelp)
	}
	if msg.Type == protocol.TypeRoomJoined {
		s.out.PrintMessage(playerHelp)
	}

	switch msg.Type {
	case protocol.TypeKickedFromRoom, protocol.TypeRoomClosed:
		return true, nil
	}
	return false, nil
}

// command runs one input line. Only send failures are returned as errors.
func (s *interactive) command(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		if s.isHost {
			s.out.PrintMessage(hostHelp)
		} else {
			s.out.PrintMessage(playerHelp)
		}
		return false, nil
	case "players":
		s.out.PrintPlayers(s.players)
		return false, nil
	}

	if s.roomCode == "" {
		s.out.PrintError(errors.New("not in a room yet"))
		return false, nil
	}
	code := model.RoomCode(s.roomCode)

	if s.isHost {
		switch name {
		case "release":
			return false, s.conn.Send(protocol.ReleaseBuzzers{RoomCode: code})
		case "reset":
			return false, s.conn.Send(protocol.ResetBuzzers{RoomCode: code})
		case "kick":
			if len(args) != 1 {
				s.out.PrintError(errors.New("usage: kick <player>"))
				return false, nil
			}
			return false, s.conn.Send(protocol.KickPlayer{RoomCode: code, PlayerID: s.resolvePlayer(args[0])})
		}
	} else {
		switch name {
		case "buzz", "b":
			return false, s.conn.Send(protocol.BuzzIn{RoomCode: code})
		}
	}

	s.out.PrintError(fmt.Errorf("unknown command %q, type help for a list", name))
	return false, nil
}

// resolvePlayer maps a player name to its id. Anything else is taken as an id.
func (s *interactive) resolvePlayer(ref string) model.ConnectionID {
	for _, p := range s.players {
		if p.ID == ref {
			return model.ConnectionID(p.ID)
		}
	}
	for _, p := range s.players {
		if strings.EqualFold(p.Name, ref) {
			return model.ConnectionID(p.ID)
		}
	}
	return model.ConnectionID(ref)
}
