package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/reinarrr/TLR-web-cfpages/internal/config"
	"github.com/reinarrr/TLR-web-cfpages/internal/logging"
	"github.com/reinarrr/TLR-web-cfpages/internal/overrides"
)

func main() {
	config.LoadEnvFile(logging.Bootstrap())
	logging.Configure(logging.Config{Service: "livingroom-overrides"})
	logger := logging.WithComponent("overrides")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("missing DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := overrides.NewPool(ctx, dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db")
	}
	defer pool.Close()

	store := &overrides.PGStore{Pool: pool}
	if err := store.ApplySchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("schema")
	}

	in := bufio.NewReader(os.Stdin)

	fmt.Println("Curate message overrides in site.message_overrides.")
	fmt.Println("Commands: add, remove, list. Enter 'q' at any prompt to quit.")
	fmt.Println()

	for {
		cmd, ok := prompt(in, "command")
		if !ok {
			return
		}
		switch strings.ToLower(cmd) {
		case "add", "a":
			if !add(ctx, in, store) {
				return
			}
		case "remove", "rm", "r":
			if !remove(ctx, in, store) {
				return
			}
		case "list", "ls", "l":
			list(ctx, store)
		case "":
		default:
			fmt.Printf("unknown command %q\n\n", cmd)
		}
	}
}

func add(ctx context.Context, in *bufio.Reader, store *overrides.PGStore) bool {
	id, ok := prompt(in, "video_id")
	if !ok {
		return false
	}
	if id == "" {
		fmt.Println("video_id is required.")
		fmt.Println()
		return true
	}
	title, ok := prompt(in, "title (optional)")
	if !ok {
		return false
	}
	date, ok := prompt(in, "date label (optional)")
	if !ok {
		return false
	}
	if title == "" && date == "" {
		fmt.Println("an override needs a title or a date label.")
		fmt.Println()
		return true
	}

	if err := store.Upsert(ctx, overrides.Record{ID: id, Title: title, Date: date}); err != nil {
		fmt.Printf("ERROR: %v\n\n", err)
		return true
	}
	fmt.Printf("OK: upserted override %s\n\n", id)
	return true
}

func remove(ctx context.Context, in *bufio.Reader, store *overrides.PGStore) bool {
	id, ok := prompt(in, "video_id")
	if !ok {
		return false
	}
	if err := store.Deactivate(ctx, id); err != nil {
		fmt.Printf("ERROR: %v\n\n", err)
		return true
	}
	fmt.Printf("OK: deactivated override %s\n\n", id)
	return true
}

func list(ctx context.Context, store *overrides.PGStore) {
	records, err := store.Load(ctx)
	if err != nil {
		fmt.Printf("ERROR: %v\n\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Println("no active overrides.")
		fmt.Println()
		return
	}
	for _, r := range records {
		fmt.Printf("%-14s %-40q %q\n", r.ID, r.Title, r.Date)
	}
	fmt.Println()
}

func prompt(in *bufio.Reader, label string) (string, bool) {
	fmt.Printf("%s: ", label)
	raw, err := in.ReadString('\n')
	if err != nil {
		return "", false
	}
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "q") {
		return "", false
	}
	return s, true
}
