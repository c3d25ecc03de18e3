// Package main provides a simple CLI client for the chatbot WebSocket endpoint.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	v1 "github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/transport/http/v1"
)

const replyWait = 2 * time.Minute

// Client represents a WebSocket chat client.
type Client struct {
	conn      *websocket.Conn
	sessionID string
}

// NewClient connects to addr, resuming sessionID when it is set.
func NewClient(addr, sessionID string) (*Client, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse addr: %w", err)
	}
	if sessionID != "" {
		q := u.Query()
		q.Set("session_id", sessionID)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Client{conn: conn, sessionID: sessionID}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// SessionID returns the session the server last answered in.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Ask sends one message and waits for its reply frame.
func (c *Client) Ask(message string) (v1.Frame, error) {
	if err := c.conn.WriteJSON(v1.Frame{Type: v1.FrameMessage, Message: message, SessionID: c.sessionID}); err != nil {
		return v1.Frame{}, fmt.Errorf("write message: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(replyWait))
	var frame v1.Frame
	if err := c.conn.ReadJSON(&frame); err != nil {
		return v1.Frame{}, fmt.Errorf("read reply: %w", err)
	}
	if frame.Type == v1.FrameError {
		return frame, fmt.Errorf("server error: %s", frame.Error)
	}
	if frame.SessionID != "" {
		c.sessionID = frame.SessionID
	}
	return frame, nil
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080/api/chat/ws", "Chat WebSocket address")
	sessionID := flag.String("session", "", "Session ID to resume")
	flag.Parse()

	log.SetFlags(log.Ltime)

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr, *sessionID)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	fmt.Println("Connected.")
	fmt.Println("\nType a message and press Enter to send.")
	fmt.Println("Commands: /session to show the session, /quit to exit")
	fmt.Println()

	// Handle Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Println("\nInterrupted")
		client.Close()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/quit":
			fmt.Println("Bye!")
			return
		case "/session":
			fmt.Printf("Session: %s\n", client.SessionID())
			continue
		}

		frame, err := client.Ask(input)
		if err != nil {
			log.Printf("Ask failed: %v", err)
			continue
		}
		fmt.Printf("\n%s\n", frame.Response)
		if frame.Warning != "" {
			fmt.Printf("(warning: %s)\n", frame.Warning)
		}
		fmt.Println()
	}
}
