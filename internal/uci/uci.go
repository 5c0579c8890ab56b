// Package uci speaks the Universal Chess Interface on stdin/stdout.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/perch/internal/board"
	"github.com/hailam/perch/internal/engine"
)

const (
	engineName   = "Perch"
	engineAuthor = "hailam"
)

// Handler runs the UCI loop against one engine instance.
type Handler struct {
	eng *engine.Engine
	out io.Writer
	log zerolog.Logger

	searching chan struct{}
}

// New builds a handler. Output goes to out (stdout for a real session),
// diagnostics to the logger, which must not write to out.
func New(eng *engine.Engine, out io.Writer, log zerolog.Logger) *Handler {
	h := &Handler{eng: eng, out: out, log: log}
	eng.OnInfo = h.printInfo
	return h
}

// Run reads commands from in until EOF or "quit".
func (h *Handler) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		h.log.Debug().Str("cmd", line).Msg("uci command")

		switch fields[0] {
		case "uci":
			h.send("id name %s", engineName)
			h.send("id author %s", engineAuthor)
			h.send("option name Hash type spin default 64 min 1 max 4096")
			h.send("option name Threads type spin default 1 min 1 max 1")
			h.send("uciok")
		case "setoption":
			h.setOption(fields[1:])
		case "isready":
			h.send("readyok")
		case "ucinewgame":
			h.eng.NewGame()
		case "position":
			if err := h.position(fields[1:]); err != nil {
				h.log.Error().Err(err).Msg("bad position command")
			}
		case "go":
			h.goCommand(fields[1:])
		case "stop":
			h.eng.Stop()
			h.waitSearch()
		case "d":
			fmt.Fprintln(h.out, h.eng.Position())
			h.send("Fen: %s", h.eng.Position().ToFEN())
		case "perft":
			h.perft(fields[1:])
		case "quit":
			h.eng.Stop()
			h.waitSearch()
			return nil
		default:
			h.log.Warn().Str("cmd", fields[0]).Msg("unknown uci command")
		}
	}
	return scanner.Err()
}

func (h *Handler) send(format string, args ...any) {
	fmt.Fprintf(h.out, format+"\n", args...)
}

// setOption handles "setoption name <id> [value <x>]". Threads is accepted
// for GUI compatibility but the search is single-threaded.
func (h *Handler) setOption(args []string) {
	name, value := "", ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			if i+1 < len(args) {
				name = strings.ToLower(args[i+1])
			}
		case "value":
			if i+1 < len(args) {
				value = args[i+1]
			}
		}
	}

	switch name {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 {
			h.log.Warn().Str("value", value).Msg("bad Hash value")
			return
		}
		h.waitSearch()
		h.eng.ResizeHash(mb)
	case "threads":
		// single-threaded, nothing to do
	default:
		h.log.Warn().Str("option", name).Msg("unknown option")
	}
}

func (h *Handler) waitSearch() {
	if h.searching != nil {
		<-h.searching
		h.searching = nil
	}
}

func (h *Handler) position(args []string) error {
	h.waitSearch()

	var pos *board.Position
	var err error
	i := 0
	switch {
	case len(args) > 0 && args[0] == "startpos":
		pos, err = board.NewPosition(board.StartFEN)
		i = 1
	case len(args) > 0 && args[0] == "fen":
		j := 1
		for j < len(args) && args[j] != "moves" {
			j++
		}
		pos, err = board.NewPosition(strings.Join(args[1:j], " "))
		i = j
	default:
		return fmt.Errorf("position: want startpos or fen")
	}
	if err != nil {
		return err
	}

	var history []uint64
	if i < len(args) && args[i] == "moves" {
		for _, ms := range args[i+1:] {
			m, err := board.ParseMove(ms, pos)
			if err != nil {
				return fmt.Errorf("position: %w", err)
			}
			history = append(history, pos.Hash)
			if _, ok := pos.MakeMove(m); !ok {
				return fmt.Errorf("position: illegal move %s", ms)
			}
		}
	}

	h.eng.SetPosition(pos, history)
	return nil
}

func (h *Handler) goCommand(args []string) {
	h.waitSearch()

	var limits engine.SearchLimits
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			limits.Infinite = true
		case "depth":
			limits.Depth = h.intArg(args, &i)
		case "movetime":
			limits.MoveTime = time.Duration(h.intArg(args, &i)) * time.Millisecond
		case "wtime":
			limits.WhiteTime = time.Duration(h.intArg(args, &i)) * time.Millisecond
		case "btime":
			limits.BlackTime = time.Duration(h.intArg(args, &i)) * time.Millisecond
		case "winc":
			limits.WhiteInc = time.Duration(h.intArg(args, &i)) * time.Millisecond
		case "binc":
			limits.BlackInc = time.Duration(h.intArg(args, &i)) * time.Millisecond
		case "movestogo":
			limits.MovesToGo = h.intArg(args, &i)
		}
	}

	done := make(chan struct{})
	h.searching = done
	go func() {
		defer close(done)
		best := h.eng.Search(limits)
		h.send("bestmove %s", best)
	}()
}

func (h *Handler) intArg(args []string, i *int) int {
	if *i+1 >= len(args) {
		return 0
	}
	*i++
	n, err := strconv.Atoi(args[*i])
	if err != nil {
		h.log.Warn().Str("arg", args[*i]).Msg("bad numeric argument")
		return 0
	}
	return n
}

func (h *Handler) perft(args []string) {
	depth := 5
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			depth = n
		}
	}
	start := time.Now()
	nodes := engine.Perft(h.eng.Position(), depth)
	elapsed := time.Since(start)
	h.send("perft %d: %d nodes in %v", depth, nodes, elapsed.Round(time.Millisecond))
}

func (h *Handler) printInfo(info engine.SearchInfo) {
	score := fmt.Sprintf("cp %d", info.Score)
	if info.Score > engine.MateScore-engine.MaxPly {
		score = fmt.Sprintf("mate %d", (engine.MateScore-info.Score+1)/2)
	} else if info.Score < -engine.MateScore+engine.MaxPly {
		score = fmt.Sprintf("mate %d", -(engine.MateScore+info.Score+1)/2)
	}

	ms := info.Elapsed.Milliseconds()
	nps := int64(0)
	if ms > 0 {
		nps = int64(info.Nodes) * 1000 / ms
	}
	h.send("info depth %d score %s nodes %d nps %d hashfull %d time %d pv %s",
		info.Depth, score, info.Nodes, nps, info.HashFull, ms, info.BestMove)
}
