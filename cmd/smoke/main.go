// Command smoke walks the public API against a running server: sign in,
// create a notebook and a note, move the note through the trash, touch the
// board and sign out.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *client) do(method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s %s: status %d, undecodable body: %w", method, path, resp.StatusCode, err)
	}
	if !env.Success {
		return &env, fmt.Errorf("%s %s: %d %s", method, path, env.Code, env.Message)
	}
	return &env, nil
}

// step runs one call, prints the outcome and decodes data into out.
func (c *client) step(name, method, path string, body, out interface{}) {
	color.Yellow("\n%s", name)
	env, err := c.do(method, path, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("OK: %s", env.Message)
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			color.Red("Failed to decode data: %v", err)
			os.Exit(1)
		}
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	email := flag.String("email", "", "account email (a fresh one is registered when empty)")
	password := flag.String("password", "smoke-password", "account password")
	flag.Parse()

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 15 * time.Second}}
	color.Cyan("🚀 Running API smoke test against %s", *baseURL)

	var auth struct {
		Token string `json:"token"`
	}
	if *email == "" {
		addr := fmt.Sprintf("smoke+%d@example.com", time.Now().Unix())
		c.step("[AUTH] Register "+addr, http.MethodPost, "/auth/v1/register",
			map[string]string{"name": "Smoke", "email": addr, "password": *password}, &auth)
	} else {
		c.step("[AUTH] Login", http.MethodPost, "/auth/v1/login",
			map[string]string{"email": *email, "password": *password}, &auth)
	}
	c.token = auth.Token

	var notebook struct {
		Id string `json:"id"`
	}
	c.step("[NOTEBOOK] Create", http.MethodPost, "/notebook/v1", map[string]string{"name": "Smoke"}, &notebook)

	var note struct {
		Id string `json:"id"`
	}
	c.step("[NOTE] Create", http.MethodPost, "/note/v1",
		map[string]interface{}{"title": "Hello", "content": "from smoke", "notebook_id": notebook.Id}, &note)
	c.step("[NOTE] Favorite", http.MethodPut, "/note/v1/"+note.Id+"/favorite", map[string]bool{"value": true}, nil)

	c.step("[BOARD] Layout", http.MethodGet, "/board/v1", nil, nil)
	c.step("[BOARD] Move", http.MethodPut, "/board/v1/"+note.Id+"/move",
		map[string]float64{"dx": 40, "dy": 20, "width": 1280, "height": 720}, nil)
	c.step("[BOARD] Paint", http.MethodPut, "/board/v1/"+note.Id+"/color", map[string]string{"color": "#ffcc00"}, nil)

	c.step("[NOTEBOOK] Trash", http.MethodPut, "/notebook/v1/"+notebook.Id+"/trash", nil, nil)
	c.step("[TRASH] List", http.MethodGet, "/trash/v1", nil, nil)
	c.step("[NOTEBOOK] Restore", http.MethodPut, "/notebook/v1/"+notebook.Id+"/restore", nil, nil)

	c.step("[NOTE] Delete", http.MethodDelete, "/note/v1/"+note.Id, nil, nil)
	c.step("[NOTEBOOK] Delete", http.MethodDelete, "/notebook/v1/"+notebook.Id, nil, nil)
	c.step("[SYNC] Refresh", http.MethodPost, "/sync/v1", nil, nil)
	c.step("[AUTH] Logout", http.MethodPost, "/auth/v1/logout", nil, nil)

	color.Cyan("\n✅ Smoke test passed")
}
