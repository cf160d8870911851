// Command main tails the live feed event stream of a running Ripple server.
// Useful for eyeballing fan-out behavior during development:
//
//	go run ./cmd/feedtail -addr localhost:8080 -email demo@example.com -password password123
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "Server host:port")
	email := flag.String("email", "", "Login email")
	password := flag.String("password", "", "Login password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	token, err := login(*addr, *email, *password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}

	wsURL := url.URL{
		Scheme:   "ws",
		Host:     *addr,
		Path:     "/api/ws/",
		RawQuery: "token=" + url.QueryEscape(token),
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		log.Fatalf("websocket dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	log.Printf("Connected to %s, waiting for feed events...", wsURL.Host)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read error: %v", err)
				return
			}
			fmt.Printf("%s %s\n", time.Now().Format(time.TimeOnly), message)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Closing connection...")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func login(addr, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	resp, err := http.Post("http://"+addr+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", fmt.Errorf("no token in login response")
	}
	return result.Token, nil
}
