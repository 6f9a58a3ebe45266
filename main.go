package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agentdesk/agentdesk/bootstrap"
	"github.com/agentdesk/agentdesk/config"
	"github.com/agentdesk/agentdesk/log"
	"github.com/agentdesk/agentdesk/reqctx"
)

// Single reader for the whole process; the chat loop and the confirmation
// prompt must not buffer stdin independently.
var stdin = bufio.NewReader(os.Stdin)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	log.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C (SIGINT)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info(context.Background(), "\nProgram terminated externally. Exiting...")
		cancel()
		// Unblock the REPL's pending read
		os.Stdin.Close()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(ctx, "Failed to load config: %v", err)
	}

	app, err := bootstrap.Setup(ctx, cfg, confirmOnTerminal)
	if err != nil {
		log.Fatalf(ctx, "Setup failed: %v", err)
	}
	defer app.Close()

	fmt.Println("agentdesk ready. Type a message, or 'exit' to quit.")

	for {
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil || ctx.Err() != nil {
			return
		}
		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			return
		}

		reqCtx := reqctx.WithRequestID(ctx, reqctx.NewRequestID())
		answer, err := app.Assistant.Chat(reqCtx, query)
		if err != nil {
			log.Errorf(reqCtx, "Chat failed: %v", err)
			continue
		}
		fmt.Println(answer)
	}
}

// confirmOnTerminal asks the user to approve a confirmation-required tool
func confirmOnTerminal(ctx context.Context, toolName string, args map[string]interface{}) bool {
	fmt.Printf("The assistant wants to run %s with input %v. Allow? [y/N] ", toolName, args)

	line, err := stdin.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
