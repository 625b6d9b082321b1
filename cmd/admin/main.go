package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tellnoone/backend/internal/config"
	"tellnoone/backend/internal/storage"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})

	store := storage.NewService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: prune-matches <hours> | ban <user_id> [hours] | unban <user_id> | logs <user_id>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "prune-matches":
		// Waiting rows have no server-side TTL; this is the out-of-band
		// cleanup for seekers who stopped polling.
		hours := 24
		if len(os.Args) > 2 {
			hours, err = strconv.Atoi(os.Args[2])
			if err != nil {
				fmt.Println("Invalid hours. Please provide an integer.")
				os.Exit(1)
			}
		}
		cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
		pruned, err := store.PruneStaleWaitingMatches(cutoff)
		if err != nil {
			log.Fatalf("Error pruning waiting matches: %v", err)
		}
		fmt.Printf("Pruned %d stale waiting matches older than %dh.\n", pruned, hours)

	case "ban":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin ban <user_id> [duration_in_hours]")
			os.Exit(1)
		}
		userID := os.Args[2]
		ttl := time.Duration(0)
		if len(os.Args) > 3 {
			hours, err := strconv.Atoi(os.Args[3])
			if err != nil {
				fmt.Println("Invalid duration. Please provide an integer.")
				os.Exit(1)
			}
			ttl = time.Duration(hours) * time.Hour
		}
		if err := rdb.Set(context.Background(), "ban:"+userID, "active", ttl).Err(); err != nil {
			log.Fatalf("Error banning user: %v", err)
		}
		fmt.Printf("User %s has been banned.\n", userID)

	case "unban":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin unban <user_id>")
			os.Exit(1)
		}
		userID := os.Args[2]
		if err := rdb.Del(context.Background(), "ban:"+userID).Err(); err != nil {
			log.Fatalf("Error unbanning user: %v", err)
		}
		fmt.Printf("User %s has been unbanned.\n", userID)

	case "logs":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin logs <user_id>")
			os.Exit(1)
		}
		userID := os.Args[2]
		entries, err := store.RecentSafetyLogs(userID, time.Now().Add(-24*time.Hour), 50)
		if err != nil {
			log.Fatalf("Error loading safety logs: %v", err)
		}
		for _, e := range entries {
			fmt.Printf("%s  %-16s severity=%-7s %s\n",
				e.CreatedAt.Format(time.RFC3339), e.EventType, e.Severity, e.Context)
		}
		fmt.Printf("%d entries.\n", len(entries))

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}
