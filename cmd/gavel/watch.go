package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/courtlab/gavel/internal/client"
	"github.com/courtlab/gavel/internal/events"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live session events",
	Long: `Watch subscribes to the server's event stream and prints each
committed ledger entry as it happens. Topics use NATS-style patterns,
e.g. "gavel.turn.*" or "gavel.>". When --session is given the caller is
registered as a spectator for that session's viewer count. With --nats
the command tails the event bus directly instead of the HTTP stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, _ := cmd.Flags().GetStringSlice("topics")
		sessionID, _ := cmd.Flags().GetString("session")
		natsURL, _ := cmd.Flags().GetString("nats")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if natsURL != "" {
			return watchBus(ctx, natsURL, topics)
		}

		req := &client.StreamRequest{Topics: topics}
		if sessionID != "" {
			req.SessionID = sessionID
			req.Viewer = actor
		}

		ch, err := api.StreamEvents(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for ev := range ch {
			if jsonOutput {
				fmt.Printf("%s\n", ev.Data)
				continue
			}
			printStreamEvent(ev)
		}
		return nil
	},
}

// watchBus subscribes directly to NATS, bypassing the HTTP server.
func watchBus(ctx context.Context, url string, topics []string) error {
	var sub events.Subscriber
	nsub, err := events.NewNATSSubscriber(url)
	if err != nil {
		return err
	}
	sub = nsub
	defer sub.Close()

	if len(topics) == 0 {
		topics = []string{"gavel.>"}
	}

	merged := make(chan *events.SessionEvent, 64)
	var wg sync.WaitGroup
	for _, topic := range topics {
		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return err
		}
		defer cancel()
		wg.Add(1)
		go func(ch <-chan *events.SessionEvent) {
			defer wg.Done()
			for ev := range ch {
				select {
				case merged <- ev:
				case <-ctx.Done():
					return
				}
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-merged:
			if !ok {
				return nil
			}
			printBusEvent(ev)
		}
	}
}

// printBusEvent renders one bus envelope as a single human-readable line.
func printBusEvent(ev *events.SessionEvent) {
	if ev == nil || ev.Entry == nil {
		return
	}
	if jsonOutput {
		data, err := json.Marshal(ev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Printf("%s\n", data)
		return
	}
	entry := ev.Entry
	fmt.Printf("%s  %-28s seq=%d session=%s\n",
		entry.CreatedAt.Local().Format(time.TimeOnly), ev.Topic(), entry.Seq, entry.SessionID)
}

// printStreamEvent renders one event as a single human-readable line.
func printStreamEvent(ev client.StreamEvent) {
	var envelope events.SessionEvent
	if err := json.Unmarshal(ev.Data, &envelope); err != nil || envelope.Entry == nil {
		fmt.Printf("%s %s\n", ev.Topic, ev.Data)
		return
	}
	entry := envelope.Entry
	fmt.Printf("%s  %-28s seq=%d session=%s\n",
		entry.CreatedAt.Local().Format(time.TimeOnly), ev.Topic, entry.Seq, entry.SessionID)
}

func init() {
	watchCmd.Flags().StringSlice("topics", nil, "topic patterns to subscribe to (default: all)")
	watchCmd.Flags().String("session", "", "register as a viewer of this session")
	watchCmd.Flags().String("nats", "", "NATS URL to tail directly instead of the server stream")
}
