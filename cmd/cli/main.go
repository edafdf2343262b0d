package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"eventhub/internal/grpcserver"
	"eventhub/pkg/models"
	"eventhub/pkg/utils"
)

const defaultBaseURL = "http://localhost:8080"

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type compareResponse struct {
	Total int `json:"total"`
	Items []struct {
		models.Event
		CostRatio string `json:"cost_ratio"`
		Occupancy int    `json:"occupancy"`
		Full      bool   `json:"full"`
	} `json:"items"`
}

func main() {
	utils.LoadDotEnv()

	global := flag.NewFlagSet("eventhub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	rest := []string{}
	if len(args) > 1 {
		sub = args[1]
		rest = args[2:]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "events":
		handleEvents(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "venues":
		handleVenues(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "watch":
		handleWatch(*baseURL, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "login", "register":
		fs := flag.NewFlagSet("auth "+sub, flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password (prompted when empty)")
		_ = fs.Parse(args)

		if *email == "" {
			log.Fatal("email is required")
		}
		pw := *password
		if pw == "" {
			var err error
			if pw, err = promptPassword("Password: "); err != nil {
				log.Fatalf("read password: %v", err)
			}
		}

		payload := map[string]string{"email": *email, "password": pw}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/"+sub, "", payload, &resp); err != nil {
			log.Fatalf("%s failed: %v", sub, err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Printf("logged in as %s until %s\n", resp.User.Email, resp.ExpiresAt.Local().Format(time.RFC1123))
	case "logout":
		if token, err := readToken(tokenPath); err == nil && token != "" {
			// revoke server side too; a stale token is cleared regardless
			_ = doJSON(ctx, client, http.MethodPost, baseURL+"/auth/logout", token, nil, nil)
		}
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	case "me":
		var out map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/me", mustToken(tokenPath), nil, &out); err != nil {
			log.Fatalf("me failed: %v", err)
		}
		printJSON(out)
	default:
		log.Fatal("usage: eventhub auth <login|register|logout|me>")
	}
}

func handleEvents(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "categories":
		fs := flag.NewFlagSet("events categories", flag.ExitOnError)
		id := fs.String("id", "", "single category id (queer, music, dance, social, culture, popular)")
		grpcAddr := fs.String("grpc", "", "query the gRPC server at this address instead of HTTP")
		_ = fs.Parse(args)

		if *grpcAddr != "" {
			resp, err := grpcCategories(ctx, *grpcAddr, *id)
			if err != nil {
				log.Fatalf("categories failed: %v", err)
			}
			printJSON(resp)
			return
		}

		endpoint := baseURL + "/events/categories"
		if *id != "" {
			endpoint += "/" + url.PathEscape(*id)
		}
		var out map[string]any
		if err := doJSON(ctx, client, http.MethodGet, endpoint, "", nil, &out); err != nil {
			log.Fatalf("categories failed: %v", err)
		}
		printJSON(out)
	case "compare":
		fs := flag.NewFlagSet("events compare", flag.ExitOnError)
		platform := fs.String("platform", "All", "platform filter")
		sort := fs.String("sort", "enjoyment", "enjoyment|crowd|cost|ratio")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/events/compare")
		if err != nil {
			log.Fatalf("invalid url: %v", err)
		}
		qv := u.Query()
		qv.Set("platform", *platform)
		qv.Set("sort", *sort)
		u.RawQuery = qv.Encode()

		var resp compareResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
			log.Fatalf("compare failed: %v", err)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDATE\tPLATFORM\tPRICE\tCROWD\tENJOY\tRATIO\tOCC%")
		for _, r := range resp.Items {
			name := r.Name
			if r.Full {
				name += " (full)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t$%.0f\t%d\t%.1f\t%s\t%d\n",
				name, r.Date, r.Platform, r.Price, r.Crowd, r.Enjoyment, r.CostRatio, r.Occupancy)
		}
		_ = tw.Flush()
	case "refresh":
		ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		long := &http.Client{Timeout: 2 * time.Minute}

		var out struct {
			Added int `json:"added"`
		}
		if err := doJSON(ctx, long, http.MethodPost, baseURL+"/events/refresh", "", nil, &out); err != nil {
			log.Fatalf("refresh failed: %v", err)
		}
		fmt.Printf("refreshed, %d new listings\n", out.Added)
	case "rate":
		fs := flag.NewFlagSet("events rate", flag.ExitOnError)
		eventID := fs.String("event", "", "event id")
		score := fs.Int("score", 0, "1..5")
		_ = fs.Parse(args)

		if *eventID == "" || *score == 0 {
			log.Fatal("event and score are required")
		}
		payload := map[string]int{"score": *score}
		var out map[string]any
		endpoint := baseURL + "/events/" + url.PathEscape(*eventID) + "/ratings"
		if err := doJSON(ctx, client, http.MethodPost, endpoint, mustToken(tokenPath), payload, &out); err != nil {
			log.Fatalf("rate failed: %v", err)
		}
		printJSON(out)
	default:
		log.Fatal("usage: eventhub events <categories|compare|refresh|rate>")
	}
}

func handleVenues(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "list":
		var out map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/venues", "", nil, &out); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(out)
	case "add":
		fs := flag.NewFlagSet("venues add", flag.ExitOnError)
		name := fs.String("name", "", "venue name")
		location := fs.String("location", "", "location")
		description := fs.String("description", "", "description")
		lat := fs.Float64("lat", 0, "latitude")
		lng := fs.Float64("lng", 0, "longitude")
		_ = fs.Parse(args)

		payload := map[string]any{
			"name":        *name,
			"location":    *location,
			"description": *description,
		}
		if *lat != 0 || *lng != 0 {
			payload["lat"] = *lat
			payload["lng"] = *lng
		}
		var out map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/venues", mustToken(tokenPath), payload, &out); err != nil {
			log.Fatalf("add venue failed: %v", err)
		}
		printJSON(out)
	case "add-event":
		fs := flag.NewFlagSet("venues add-event", flag.ExitOnError)
		venueID := fs.String("venue", "", "venue id")
		name := fs.String("name", "", "event name")
		date := fs.String("date", "", "YYYY-MM-DD")
		clock := fs.String("time", "", "e.g. 9:00 PM")
		price := fs.Float64("price", 0, "ticket price")
		platform := fs.String("platform", "Other", "Eventbrite|Dice|Partiful|Posh|Other")
		crowd := fs.Int("crowd", 0, "expected attendance")
		capacity := fs.Int("capacity", 0, "capacity")
		description := fs.String("description", "", "description")
		_ = fs.Parse(args)

		if *venueID == "" {
			log.Fatal("venue is required")
		}
		payload := map[string]any{
			"name":        *name,
			"date":        *date,
			"time":        *clock,
			"price":       *price,
			"platform":    *platform,
			"crowd":       *crowd,
			"capacity":    *capacity,
			"description": *description,
		}
		var out map[string]any
		endpoint := baseURL + "/venues/" + url.PathEscape(*venueID) + "/events"
		if err := doJSON(ctx, client, http.MethodPost, endpoint, mustToken(tokenPath), payload, &out); err != nil {
			log.Fatalf("add event failed: %v", err)
		}
		printJSON(out)
	default:
		log.Fatal("usage: eventhub venues <list|add|add-event>")
	}
}

// handleWatch streams live updates and reconnects when the server drops.
func handleWatch(baseURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	once := fs.Bool("once", false, "exit on disconnect instead of reconnecting")
	_ = fs.Parse(args)

	wsURL, err := websocketURL(baseURL, "/ws")
	if err != nil {
		log.Fatalf("invalid api url: %v", err)
	}
	for {
		if err := runWebSocket(wsURL); err != nil {
			log.Printf("[watch] disconnected: %v", err)
		}
		if *once {
			return
		}
		time.Sleep(time.Second)
	}
}

func runWebSocket(wsURL string) error {
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
		fmt.Println(string(msg))
	}
}

func grpcCategories(ctx context.Context, addr, id string) (*grpcserver.ListCategoriesResponse, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return grpcserver.NewDiscoveryClient(conn).ListCategories(ctx, &grpcserver.ListCategoriesRequest{CategoryID: id})
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   strings.TrimRight(u.Path, "/") + path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("eventhub [-api URL] [-token PATH] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout|me")
	fmt.Println("  events categories|compare|refresh|rate")
	fmt.Println("  venues list|add|add-event")
	fmt.Println("  watch")
}
