package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/guidr-app/guidr/backend/internal/client/session"
	"github.com/guidr-app/guidr/backend/internal/model/chat"
)

// runChat drives s from line-oriented input until EOF or /quit.
func runChat(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "== %s ==\n", s.Recipe().Name)
	for _, m := range s.Messages() {
		printMessage(out, m)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			s.Clear()
			for _, m := range s.Messages() {
				printMessage(out, m)
			}
			continue
		}

		reply, err := s.Send(ctx, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		printMessage(out, reply)
	}
}

func printMessage(out io.Writer, m chat.Message) {
	if m.Role == chat.Assistant {
		fmt.Fprintf(out, "coach: %s\n", m.Content)
	}
}
