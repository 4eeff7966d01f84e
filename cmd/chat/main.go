// Command chat is a terminal client for the agent backend. It streams the
// reply for each line typed, rewriting any leading JSON metadata block
// into a readable summary.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	clientx "github.com/jewelryops/agent/client"
)

func main() {
	url := flag.String("url", "ws://localhost:8000/ws/chat", "chat WebSocket URL")
	sessionID := flag.String("session", "", "session id (defaults to a random one)")
	flag.Parse()

	if *sessionID == "" {
		*sessionID = "cli-" + uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chat := clientx.New(*url)
	fmt.Printf("session %s — ask about an order, customer, or inventory issue\n", *sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nyou> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			break
		}

		fmt.Print("agent> ")
		done, err := chat.Stream(ctx, *sessionID, message, func(token string) {
			fmt.Print(token)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
			if ctx.Err() != nil {
				return
			}
			continue
		}
		fmt.Printf("\n(%d tool calls this session)\n", done.ToolCallsCount)
	}
}
