package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	runKeyPrefix = "run:"
	recentKey    = "runs:recent"
)

// Fields every stored run record must carry
type runData struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	Result     string `json:"result"`
	FinishedAt string `json:"finished_at"`
}

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning run records...")

	// Records that do not parse
	var corruptedKeys []string
	var checkedCount int

	iter := client.Scan(ctx, 0, runKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		checkedCount++

		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		var run runData
		if err := json.Unmarshal([]byte(data), &run); err != nil {
			fmt.Printf("✗ Corrupted JSON in %s\n", key)
			corruptedKeys = append(corruptedKeys, key)
			continue
		}
		if run.ID != strings.TrimPrefix(key, runKeyPrefix) || run.Result == "" || run.FinishedAt == "" {
			fmt.Printf("✗ Incomplete record in %s\n", key)
			corruptedKeys = append(corruptedKeys, key)
		}
	}
	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	// Index members whose record is gone
	members, err := client.ZRange(ctx, recentKey, 0, -1).Result()
	if err != nil {
		log.Fatal("Failed to read run index:", err)
	}
	var dangling []string
	for _, id := range members {
		n, err := client.Exists(ctx, runKeyPrefix+id).Result()
		if err != nil {
			fmt.Printf("Error checking %s: %v\n", id, err)
			continue
		}
		if n == 0 {
			fmt.Printf("✗ Index entry %s has no record\n", id)
			dangling = append(dangling, id)
		}
	}

	fmt.Printf("\nChecked %d records and %d index entries, found %d corrupted and %d dangling\n",
		checkedCount, len(members), len(corruptedKeys), len(dangling))

	if len(corruptedKeys) == 0 && len(dangling) == 0 {
		fmt.Println("Run index is consistent!")
		return
	}

	fmt.Print("\nDo you want to DELETE these entries? (yes/no): ")
	var response string
	_, _ = fmt.Scanln(&response)

	if response != "yes" {
		fmt.Println("Aborted - no changes made")
		return
	}

	for _, key := range corruptedKeys {
		pipe := client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, recentKey, strings.TrimPrefix(key, runKeyPrefix))
		if _, err := pipe.Exec(ctx); err != nil {
			fmt.Printf("Failed to delete %s: %v\n", key, err)
		} else {
			fmt.Printf("Deleted %s\n", key)
		}
	}
	for _, id := range dangling {
		if err := client.ZRem(ctx, recentKey, id).Err(); err != nil {
			fmt.Printf("Failed to unindex %s: %v\n", id, err)
		} else {
			fmt.Printf("Unindexed %s\n", id)
		}
	}
	fmt.Println("\nRepair complete!")
}
