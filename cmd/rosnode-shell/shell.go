package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/chadrockey/ros/internal/directory"
	"github.com/chadrockey/ros/pkg/callbackqueue"
	"github.com/chadrockey/ros/pkg/log"
	"github.com/chadrockey/ros/pkg/rosnode"
	"github.com/chadrockey/ros/pkg/rostime"
	"github.com/chadrockey/ros/pkg/subscription"
	"github.com/chadrockey/ros/pkg/timer"
)

// inlineCallbackQueue runs a timer callback synchronously on the
// goroutine that scheduled it, standing in for a real user-owned
// CallbackQueue drained by an application thread.
type inlineCallbackQueue struct{}

func (inlineCallbackQueue) AddCallback(cb callbackqueue.CallbackInterface) {
	cb.Call()
}

// Shell wires a Registry, Directory, poll-based RPC dispatcher, and a
// WallManager into one readline REPL, grounded on the teacher's
// cmd/mash-device/interactive.Device shape.
type Shell struct {
	cfg        rosnode.Config
	logger     log.Logger
	registry   *subscription.Registry
	dir        *directory.Directory
	dispatcher *directory.PollDispatcher
	timers     *timer.WallManager
	rl         *readline.Instance

	mu         sync.Mutex
	nextTimer  int
	timerNames map[int]uint32
}

// New constructs a Shell ready to Run.
func New(cfg rosnode.Config, logger log.Logger) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Name + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("creating readline: %w", err)
	}

	registry := subscription.NewRegistry()
	s := &Shell{
		cfg:        cfg,
		logger:     logger,
		registry:   registry,
		dir:        directory.New(registry),
		dispatcher: directory.NewPollDispatcher(50 * time.Millisecond),
		timers:     timer.NewWallManager(),
		rl:         rl,
		timerNames: make(map[int]uint32),
	}
	return s, nil
}

// Close releases the shell's readline handle, timer manager, and every
// registered subscription.
func (s *Shell) Close() {
	s.timers.Shutdown()
	s.registry.ClearAll()
	s.rl.Close()
}

// Run starts the interactive command loop. It also drives the poll
// dispatcher's background loop for the duration of ctx.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	go s.dispatcher.Run(ctx)

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		fields := strings.Fields(input)
		cmd := strings.ToLower(fields[0])
		args := fields[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()
		case "subscribe", "sub":
			s.cmdSubscribe(args)
		case "unsubscribe", "unsub":
			s.cmdUnsubscribe(args)
		case "pubupdate", "pu":
			s.cmdPubUpdate(args)
		case "deliver", "d":
			s.cmdDeliver(args)
		case "stats":
			s.cmdStats(args)
		case "info":
			s.cmdInfo(args)
		case "topics":
			s.cmdTopics()
		case "timer":
			s.cmdTimer(args)
		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
rosnode-shell Commands:
  Subscriptions:
    subscribe <topic> <md5sum> <type> [max_queue]  - register a subscription
    unsubscribe <topic>                             - shut down a subscription
    pubupdate <topic> [uri1,uri2,...]                - advertise a publisher set
    deliver <topic> <text>                           - inject a message directly (bypasses negotiation)
    stats <topic>                                    - show traffic stats
    info <topic>                                     - show publisher link info
    topics                                           - list every subscribed topic

  Timers:
    timer add <period_seconds>  - start a wall-clock timer, printing on each fire
    timer list                  - list active timer ids
    timer remove <id>           - stop a timer

  General:
    help  - show this help
    quit  - exit the shell`)
}

func (s *Shell) cmdSubscribe(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: subscribe <topic> <md5sum> <type> [max_queue]")
		return
	}
	topic, md5sum, dataType := args[0], args[1], args[2]

	opts := subscription.DefaultOptions()
	opts.SelfURI = s.cfg.URI
	opts.CallerID = s.cfg.Name
	opts.Dispatcher = s.dispatcher
	opts.Logger = s.logger
	opts.MaxQueue = s.cfg.DefaultMaxQueue
	opts.DialOpts = s.cfg.DialOpts
	if key, err := s.cfg.NodeSecretKey(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "node_secret_key: %v (encryption disabled)\n", err)
	} else {
		opts.NodeSecretKey = key
	}
	if len(args) >= 4 {
		if n, err := strconv.Atoi(args[3]); err == nil {
			opts.MaxQueue = n
		}
	}

	sub := s.registry.GetOrCreate(topic, md5sum, dataType, opts)
	sub.AddCallback(subscription.FuncHelper(func(bytes []byte, hdr map[string]string) error {
		fmt.Fprintf(s.rl.Stdout(), "\n[%s] %s\n", topic, string(bytes))
		s.rl.Refresh()
		return nil
	}), nil, 0, nil)

	fmt.Fprintf(s.rl.Stdout(), "Subscribed to %s (md5=%s type=%s)\n", topic, md5sum, dataType)
}

func (s *Shell) cmdUnsubscribe(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: unsubscribe <topic>")
		return
	}
	s.registry.Unsubscribe(args[0])
	fmt.Fprintf(s.rl.Stdout(), "Unsubscribed from %s\n", args[0])
}

func (s *Shell) cmdPubUpdate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: pubupdate <topic> [uri1,uri2,...]")
		return
	}
	topic := args[0]
	var uris []string
	if len(args) >= 2 {
		uris = strings.Split(args[1], ",")
	}
	s.dir.Advertise(topic, uris)
	fmt.Fprintf(s.rl.Stdout(), "Advertised %d publisher(s) for %s\n", len(uris), topic)
}

func (s *Shell) cmdDeliver(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: deliver <topic> <text>")
		return
	}
	topic := args[0]
	text := strings.Join(args[1:], " ")
	sub, ok := s.registry.Get(topic)
	if !ok {
		fmt.Fprintf(s.rl.Stdout(), "Not subscribed to %s\n", topic)
		return
	}
	sub.HandleMessage(nil, []byte(text), nil)
}

func (s *Shell) cmdStats(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: stats <topic>")
		return
	}
	sub, ok := s.registry.Get(args[0])
	if !ok {
		fmt.Fprintf(s.rl.Stdout(), "Not subscribed to %s\n", args[0])
		return
	}
	snap := sub.GetStats()
	fmt.Fprintf(s.rl.Stdout(), "  bytes_received:    %d\n", snap.BytesReceived)
	fmt.Fprintf(s.rl.Stdout(), "  messages_received: %d\n", snap.MessagesReceived)
	fmt.Fprintf(s.rl.Stdout(), "  queue_full:        %d\n", snap.QueueFull)
	fmt.Fprintf(s.rl.Stdout(), "  connections:       %d\n", len(snap.Connections))
}

func (s *Shell) cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: info <topic>")
		return
	}
	sub, ok := s.registry.Get(args[0])
	if !ok {
		fmt.Fprintf(s.rl.Stdout(), "Not subscribed to %s\n", args[0])
		return
	}
	for _, c := range sub.GetInfo() {
		fmt.Fprintf(s.rl.Stdout(), "  %s -> %s (%s, active=%t)\n", c.ConnectionID, c.Destination, c.Transport, c.Active)
	}
}

func (s *Shell) cmdTopics() {
	for _, t := range s.registry.Topics() {
		fmt.Fprintln(s.rl.Stdout(), " ", t)
	}
}

func (s *Shell) cmdTimer(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: timer add <period_seconds> | timer list | timer remove <id>")
		return
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			fmt.Fprintln(s.rl.Stdout(), "Usage: timer add <period_seconds>")
			return
		}
		period, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid period: %v\n", err)
			return
		}

		s.mu.Lock()
		id := s.nextTimer
		s.nextTimer++
		s.mu.Unlock()

		handle := s.timers.Add(rostime.WallDurationFromSec(period), func(e timer.WallEvent) {
			fmt.Fprintf(s.rl.Stdout(), "\n[timer %d] fired at %s\n", id, e.CurrentReal)
			s.rl.Refresh()
		}, inlineCallbackQueue{}, nil)

		s.mu.Lock()
		s.timerNames[id] = handle
		s.mu.Unlock()

		fmt.Fprintf(s.rl.Stdout(), "Added timer %d at %.3fs period\n", id, period)

	case "list":
		s.mu.Lock()
		defer s.mu.Unlock()
		for id, handle := range s.timerNames {
			fmt.Fprintf(s.rl.Stdout(), "  %d (pending=%t)\n", id, s.timers.HasPending(handle))
		}

	case "remove":
		if len(args) < 2 {
			fmt.Fprintln(s.rl.Stdout(), "Usage: timer remove <id>")
			return
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid id: %v\n", err)
			return
		}
		s.mu.Lock()
		handle, ok := s.timerNames[id]
		delete(s.timerNames, id)
		s.mu.Unlock()
		if !ok {
			fmt.Fprintf(s.rl.Stdout(), "No such timer: %d\n", id)
			return
		}
		s.timers.Remove(handle)
		fmt.Fprintf(s.rl.Stdout(), "Removed timer %d\n", id)

	default:
		fmt.Fprintln(s.rl.Stdout(), "Usage: timer add <period_seconds> | timer list | timer remove <id>")
	}
}
