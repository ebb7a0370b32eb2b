package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"

	"artshop/internal/catalog"
	"artshop/internal/session"
	"artshop/internal/topics"
	"artshop/pkg/money"
)

const defaultBaseURL = "http://localhost:8080"

type app struct {
	api         *client
	sessionPath string
}

func main() {
	global := pflag.NewFlagSet("shop", pflag.ExitOnError)
	global.SetInterspersed(false)
	baseURL := global.String("api", defaultBaseURL, "storefront base URL")
	sessionPath := global.String("session-file", defaultSessionPath(), "where the current session id is kept")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	a := &app{
		api:         &client{http: &http.Client{Timeout: 15 * time.Second}, baseURL: *baseURL},
		sessionPath: *sessionPath,
	}
	if err := a.run(context.Background(), args[0], args[1:]); err != nil {
		log.Fatal(err)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "new":
		return a.newSession(ctx)
	case "end":
		return a.endSession(ctx)
	case "show":
		return a.show(ctx)
	case "view":
		return a.view(ctx)
	case "reload":
		return a.post(ctx, "/reload", nil, nil)
	case "topic", "subtopic", "gallery":
		if len(args) != 1 {
			return fmt.Errorf("usage: shop %s <name>", cmd)
		}
		var snap session.Snapshot
		if err := a.post(ctx, "/"+cmd, map[string]string{"name": args[0]}, &snap); err != nil {
			return err
		}
		return a.view(ctx)
	case "detail":
		return a.detail(ctx, args)
	case "cart":
		return a.cart(ctx, args)
	case "checkout":
		return a.checkout(ctx)
	case "catalog":
		return a.catalog(ctx, args)
	case "watch":
		return a.watch()
	default:
		printUsage()
		os.Exit(1)
	}
	return nil
}

func (a *app) sessionID() (string, error) {
	id, err := readSession(a.sessionPath)
	if err != nil {
		return "", fmt.Errorf("no current session (run `shop new`): %w", err)
	}
	return id, nil
}

func (a *app) endpoint(suffix string) (string, error) {
	id, err := a.sessionID()
	if err != nil {
		return "", err
	}
	return "/sessions/" + url.PathEscape(id) + suffix, nil
}

func (a *app) post(ctx context.Context, suffix string, payload, out any) error {
	p, err := a.endpoint(suffix)
	if err != nil {
		return err
	}
	return a.api.doJSON(ctx, http.MethodPost, p, payload, out)
}

func (a *app) newSession(ctx context.Context) error {
	var resp struct {
		Session   session.Snapshot    `json:"session"`
		Galleries *catalog.Collection `json:"galleries"`
	}
	if err := a.api.doJSON(ctx, http.MethodPost, "/sessions", nil, &resp); err != nil {
		return err
	}
	if err := saveSession(a.sessionPath, resp.Session.ID); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Printf("session %s started, %d image(s) in %v\n", resp.Session.ID, resp.Galleries.Len(), resp.Galleries.Names)
	return nil
}

func (a *app) endSession(ctx context.Context) error {
	p, err := a.endpoint("")
	if err != nil {
		return err
	}
	if err := a.api.doJSON(ctx, http.MethodDelete, p, nil, nil); err != nil {
		return err
	}
	if err := clearSession(a.sessionPath); err != nil {
		return err
	}
	fmt.Println("session ended")
	return nil
}

func (a *app) show(ctx context.Context) error {
	p, err := a.endpoint("")
	if err != nil {
		return err
	}
	var snap session.Snapshot
	if err := a.api.doJSON(ctx, http.MethodGet, p, nil, &snap); err != nil {
		return err
	}
	printJSON(snap)
	return nil
}

func (a *app) view(ctx context.Context) error {
	p, err := a.endpoint("/view")
	if err != nil {
		return err
	}
	var resp struct {
		Session session.Snapshot   `json:"session"`
		Topics  []topics.TopicView `json:"topics"`
	}
	if err := a.api.doJSON(ctx, http.MethodGet, p, nil, &resp); err != nil {
		return err
	}
	renderView(os.Stdout, resp.Topics)
	if resp.Session.DetailOpen {
		d := resp.Session.CurrentDetail
		fmt.Printf("\ndetail: %s (%s)\n  %s\n  %s\n", d.Name, d.Src, d.Description, money.Format(d.Price))
	}
	if resp.Session.CartOpen {
		fmt.Println()
		renderCart(os.Stdout, resp.Session)
	}
	return nil
}

func (a *app) detail(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "close" {
		p, err := a.endpoint("/detail")
		if err != nil {
			return err
		}
		return a.api.doJSON(ctx, http.MethodDelete, p, nil, nil)
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: shop detail <gallery> <index> | shop detail close")
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("index must be an integer: %w", err)
	}
	var snap session.Snapshot
	if err := a.post(ctx, "/detail", map[string]any{"gallery": args[0], "index": idx}, &snap); err != nil {
		return err
	}
	d := snap.CurrentDetail
	fmt.Printf("%s\n  %s\n  %s\n  %s\n", d.Name, d.Src, d.Description, money.Format(d.Price))
	return nil
}

func (a *app) cart(ctx context.Context, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	var (
		method = http.MethodPost
		suffix string
	)
	switch sub {
	case "show":
		method, suffix = http.MethodGet, ""
	case "add":
		suffix = "/cart"
	case "open", "close":
		suffix = "/cart/" + sub
	case "clear":
		method, suffix = http.MethodDelete, "/cart"
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: shop cart remove <index>")
		}
		if _, err := strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("index must be an integer: %w", err)
		}
		method, suffix = http.MethodDelete, "/cart/"+args[1]
	default:
		return fmt.Errorf("usage: shop cart <show|add|open|close|clear|remove>")
	}

	p, err := a.endpoint(suffix)
	if err != nil {
		return err
	}
	var snap session.Snapshot
	if err := a.api.doJSON(ctx, method, p, nil, &snap); err != nil {
		return err
	}
	renderCart(os.Stdout, snap)
	return nil
}

func (a *app) checkout(ctx context.Context) error {
	var resp struct {
		Receipt session.Receipt `json:"receipt"`
	}
	if err := a.post(ctx, "/checkout", nil, &resp); err != nil {
		return err
	}
	fmt.Printf("checked out %d item(s), total %s\n", resp.Receipt.Count, money.Format(resp.Receipt.Total))
	return nil
}

func (a *app) catalog(ctx context.Context, args []string) error {
	p := "/catalog"
	if len(args) > 0 {
		p += "/" + url.PathEscape(args[0])
	}
	var out any
	if err := a.api.doJSON(ctx, http.MethodGet, p, nil, &out); err != nil {
		return err
	}
	printJSON(out)
	return nil
}

// watch follows the session's websocket event stream until it closes.
func (a *app) watch() error {
	p, err := a.endpoint("/ws")
	if err != nil {
		return err
	}
	wsURL, err := a.api.websocketURL(p)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", wsURL)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev session.Event
		if json.Unmarshal(msg, &ev) == nil && ev.Type != "" && ev.Type != "welcome" {
			fmt.Printf("%s #%-4d %-18s cart=%d total=%s\n",
				ev.At.Local().Format(time.TimeOnly), ev.State.Seq, ev.Type, ev.State.CartCount, ev.State.TotalLabel)
			continue
		}
		fmt.Print(string(msg))
	}
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: shop [--api URL] [--session-file PATH] <command>

commands:
  new                        start a session
  end                        end the current session
  show                       print the session state
  view                       print the topic tree
  reload                     rebuild the session's galleries
  topic|subtopic|gallery N   toggle an entry of the tree
  detail <gallery> <index>   show an item
  detail close               hide the detail view
  cart [add|open|close|clear|remove <i>]
  checkout
  catalog [gallery]          print freshly resolved galleries
  watch                      follow session events`)
}
