package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"webdialer/internal/call"
	"webdialer/internal/config"
	"webdialer/internal/contacts"
	"webdialer/internal/numbers"
	"webdialer/pkg/logger"
)

// dialer is the terminal counterpart of the browser softphone: it manages the
// local contacts file and places calls through the API server's token and
// number endpoints plus the REST call transport.

func main() {
	apiBase := flag.String("api", "http://localhost:8080", "base URL of the webdialer API")
	contactsPath := flag.String("contacts", defaultContactsPath(), "path of the contacts file")
	from := flag.String("from", "", "caller ID; defaults to the account's first number")
	flag.Parse()

	log := logger.New(strings.TrimSpace(os.Getenv("APP_ENV")))
	store := contacts.NewFileStore(*contactsPath)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "contacts":
		err = runContacts(store, args[1:])
	case "resolve":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		var name string
		name, err = store.ResolveName(args[1])
		if err == nil {
			fmt.Println(name)
		}
	case "numbers":
		err = runNumbers(*apiBase)
	case "call":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		err = runCall(*apiBase, *from, args[1], store, log)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: dialer [flags] <command>

commands:
  contacts list              list saved contacts
  contacts add <name> <num>  save a contact
  contacts rm <id>           delete a contact by id
  resolve <number>           print the saved name for a number
  numbers                    list the account's caller-ID numbers
  call <destination>         place a call (number or client identity)`)
}

func defaultContactsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "contacts.json"
	}
	return filepath.Join(home, ".webdialer", "contacts.json")
}

func runContacts(store contacts.Store, args []string) error {
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	switch args[0] {
	case "list":
		list, err := store.List()
		if err != nil {
			return err
		}
		for _, c := range list {
			fmt.Printf("%s\t%s\t%s\n", c.ID, c.Name, c.Number)
		}
		return nil
	case "add":
		if len(args) != 3 {
			usage()
			os.Exit(2)
		}
		c, err := store.Save(args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("saved %s (%s)\n", c.Name, c.ID)
		return nil
	case "rm":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		return store.Delete(args[1])
	default:
		usage()
		os.Exit(2)
		return nil
	}
}

func runNumbers(apiBase string) error {
	nums, err := fetchNumbers(apiBase)
	if err != nil {
		return err
	}
	if len(nums) == 0 {
		fmt.Println("no numbers provisioned")
		return nil
	}
	for _, n := range nums {
		fmt.Printf("%s\t%s\n", n.PhoneNumber, n.FriendlyName)
	}
	return nil
}

func fetchNumbers(apiBase string) ([]numbers.PhoneNumber, error) {
	resp, err := http.Get(apiBase + "/numbers")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("numbers endpoint returned %s", resp.Status)
	}
	var nums []numbers.PhoneNumber
	if err := json.NewDecoder(resp.Body).Decode(&nums); err != nil {
		return nil, err
	}
	return nums, nil
}

// apiTokens fetches access tokens from the server's token endpoint.
type apiTokens struct {
	base string
}

func (t apiTokens) Token(ctx context.Context) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+"/token", nil)
	if err != nil {
		return "", "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("token endpoint returned %s", resp.Status)
	}
	var body struct {
		Token    string `json:"token"`
		Identity string `json:"identity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", err
	}
	return body.Token, body.Identity, nil
}

func runCall(apiBase, from, to string, store contacts.Store, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if from == "" {
		nums, err := fetchNumbers(apiBase)
		if err != nil {
			return fmt.Errorf("pick caller id: %w", err)
		}
		if len(nums) == 0 {
			return fmt.Errorf("no caller ID available; pass -from")
		}
		from = nums[0].PhoneNumber
	}

	cfg := config.TwilioConfig{
		AccountSID:  strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		AuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwimlAppSID: strings.TrimSpace(os.Getenv("TWILIO_TWIML_APP_SID")),
	}
	transport, err := call.NewRestTransport(cfg, log)
	if err != nil {
		return err
	}

	session, err := call.NewSession(ctx, apiTokens{base: apiBase}, transport, log)
	if err != nil {
		return err
	}
	defer session.Close()

	session.SetCallerID(from)
	name, err := store.ResolveName(to)
	if err != nil {
		name = to
	}
	fmt.Printf("calling %s from %s...\n", name, from)
	if err := session.Dial(ctx, to); err != nil {
		return err
	}

	fmt.Println("call placed; digits to send DTMF, 'mute' to toggle, 'hangup' to end")
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- strings.TrimSpace(sc.Text())
		}
		close(lines)
	}()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nhanging up")
			return session.Close()
		case <-ticker.C:
			if session.Status() == call.StateConnected {
				fmt.Printf("in call %ds\n", session.Duration())
			}
		case line, ok := <-lines:
			if !ok {
				return session.Close()
			}
			switch line {
			case "hangup", "quit", "exit":
				return session.Close()
			case "mute":
				muted, err := session.ToggleMute()
				if err != nil {
					fmt.Println("mute:", err)
					continue
				}
				fmt.Println("muted:", muted)
			case "":
			default:
				for _, d := range line {
					if err := session.SendDigit(d); err != nil {
						fmt.Println("digit:", err)
						break
					}
				}
			}
		}
	}
}
