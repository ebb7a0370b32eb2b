package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type anyEvent map[string]any

func main() {
	addr := pflag.StringP("addr", "a", "127.0.0.1:7070", "TCP event feed address")
	pretty := pflag.Bool("pretty", true, "pretty print JSON events")
	session := pflag.StringP("session", "s", "", "only print events of this session id")
	backoff := pflag.Duration("reconnect", time.Second, "delay between reconnect attempts")
	pflag.Parse()

	for {
		if err := run(*addr, *pretty, *session); err != nil {
			log.Printf("[sync-client] disconnected: %v", err)
		}
		time.Sleep(*backoff)
	}
}

func run(addr string, pretty bool, session string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync-client] connected to %s", addr)
	return follow(conn, os.Stdout, pretty, session)
}

// follow copies the feed to w one event per line, or indented when pretty.
// Events of other sessions are skipped when session is set; the welcome
// line always passes.
func follow(r io.Reader, w io.Writer, pretty bool, session string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()

		var obj anyEvent
		if err := json.Unmarshal(line, &obj); err != nil {
			// not JSON? print raw
			fmt.Fprintln(w, string(line))
			continue
		}

		if session != "" && obj["type"] != "welcome" {
			if id, _ := obj["session_id"].(string); !strings.EqualFold(id, session) {
				continue
			}
		}

		if !pretty {
			fmt.Fprintln(w, string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Fprintln(w, string(b))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}
