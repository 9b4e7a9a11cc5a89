package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"pycramdb/messaging"
	"pycramdb/protocol"
)

// eventPrinter writes one line per action event.
type eventPrinter struct {
	protocol.NoOpHandler
	mu  sync.Mutex
	out io.Writer
}

func (p *eventPrinter) HandleActionRecorded(env *protocol.Envelope, e *protocol.ActionRecorded) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s recorded %s %d (robot state %d) from %s\n",
		env.Timestamp.Format("15:04:05"), e.Kind, e.ActionID, e.RobotStateID, env.Src)
}

func (p *eventPrinter) HandleActionDeleted(env *protocol.Envelope, e *protocol.ActionDeleted) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s deleted %s %d from %s\n",
		env.Timestamp.Format("15:04:05"), e.Kind, e.ActionID, env.Src)
}

func newWatchCmd(a *app) *cobra.Command {
	var msgType string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print action events from the messaging backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.eventsEnabled() {
				return errors.New("watch: no messaging backend configured")
			}
			client := messaging.NewClient(&a.cfg.Messaging)
			if err := client.Connect(); err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ing := protocol.NewIngestor(&eventPrinter{out: cmd.OutOrStdout()}, typeFilter(msgType))
			if err := client.Subscribe(ctx, a.cfg.Messaging.EventsTopic, ing.HandleRaw); err != nil {
				return fmt.Errorf("subscribe %s: %w", a.cfg.Messaging.EventsTopic, err)
			}
			<-ctx.Done()
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		},
	}
	cmd.Flags().StringVar(&msgType, "type", "", "only print events of this type (action.recorded or action.deleted)")
	return cmd
}

func typeFilter(msgType string) protocol.FilterFunc {
	if msgType == "" {
		return nil
	}
	return func(hdr *protocol.RawHeader) bool { return hdr.Type == msgType }
}
