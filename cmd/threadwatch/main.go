// Command threadwatch logs in and tails one message thread over the websocket
// stream, printing each message once as it arrives.
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
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type frame struct {
	Type     string `json:"type"`
	Error    string `json:"error"`
	Code     string `json:"code"`
	Messages []struct {
		ID        uint      `json:"id"`
		UserName  string    `json:"user_name"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"messages"`
}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	email := flag.String("email", "priya@example.com", "Account email")
	password := flag.String("password", "password123", "Account password")
	scope := flag.String("scope", "property", "Thread scope: property, group or conversation")
	id := flag.Uint("id", 1, "Thread id")
	flag.Parse()

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     *host,
		Path:     fmt.Sprintf("/api/ws/threads/%s/%d", *scope, *id),
		RawQuery: url.Values{"token": {token}}.Encode(),
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial %s failed: %v", u.Path, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()
	log.Printf("Watching %s:%d", *scope, *id)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	seen := make(map[uint]bool)
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			log.Printf("Stream closed: %v", err)
			return
		}
		if f.Type == "error" {
			log.Fatalf("Stream error (%s): %s", f.Code, f.Error)
		}
		for _, m := range f.Messages {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04:05"), m.UserName, m.Message)
		}
	}
}

func login(host, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := http.Post("http://"+host+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", err
	}
	return res.Token, nil
}
