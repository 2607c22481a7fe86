package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/gamenight-tracker/internal/domain"
)

// randomResult builds a ranked result for a random subset of at least two players
func randomResult(eventID string, games, players []string, order int) domain.ResultSubmission {
	picked := append([]string(nil), players...)
	rand.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	picked = picked[:2+rand.Intn(len(picked)-1)]

	results := make([]domain.PlayerResult, len(picked))
	for i, playerID := range picked {
		rank := i + 1
		results[i] = domain.PlayerResult{
			PlayerID: playerID,
			Rank:     &rank,
			IsLoser:  i == len(picked)-1,
		}
	}

	return domain.ResultSubmission{
		ID:            uuid.NewString(),
		EventID:       eventID,
		GameID:        games[rand.Intn(len(games))],
		Order:         order,
		PlayerResults: results,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "gamenight-results", "Kafka topic")
	eventID := flag.String("event", "", "Event ID the results belong to")
	gameList := flag.String("games", "", "Game IDs to pick from (comma-separated)")
	playerList := flag.String("players", "", "Player IDs to pick from (comma-separated)")
	count := flag.Int("count", 10, "Results to send before continuous mode")
	updatesPerSecond := flag.Int("rate", 1, "Results per second in continuous mode")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	initialOnly := flag.Bool("initial-only", false, "Only send the initial results, no continuous updates")
	flag.Parse()

	games := splitList(*gameList)
	players := splitList(*playerList)
	if *eventID == "" || len(games) == 0 || len(players) < 2 {
		fmt.Fprintln(os.Stderr, "-event, -games and at least two -players are required")
		flag.Usage()
		os.Exit(2)
	}
	if *updatesPerSecond < 1 {
		*updatesPerSecond = 1
	}

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("  Game night result producer")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Brokers:          %s\n", *brokers)
	fmt.Printf("  Topic:            %s\n", *topic)
	fmt.Printf("  Event:            %s\n", *eventID)
	fmt.Printf("  Games:            %s\n", strings.Join(games, ", "))
	fmt.Printf("  Players:          %s\n", strings.Join(players, ", "))
	fmt.Printf("  Results/sec:      %d\n", *updatesPerSecond)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	// Create producer
	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	shutdown := func() {
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\n✓ Completed. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	// Results of one event share a key so they stay ordered on one partition
	order := 0
	sendResult := func() {
		submission := randomResult(*eventID, games, players, order)
		order++

		data, err := json.Marshal(submission)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(submission.EventID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
		}
	}

	fmt.Printf("Sending %d initial results...\n", *count)
	for i := 0; i < *count; i++ {
		sendResult()
		fmt.Printf("\r  Progress: %d/%d results", i+1, *count)
	}
	fmt.Printf("\n✓ Sent %d results\n\n", *count)

	if *initialOnly {
		fmt.Println("Initial-only mode: exiting")
		shutdown()
		return
	}

	fmt.Printf("Starting continuous results (%d/sec)\n", *updatesPerSecond)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ticker := time.NewTicker(time.Second / time.Duration(*updatesPerSecond))
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	for {
		select {
		case <-sigChan:
			fmt.Println("\n\nShutting down...")
			shutdown()
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				fmt.Println("\n\nDuration reached, shutting down...")
				shutdown()
				return
			}
			sendResult()

		case <-statsTicker.C:
			fmt.Printf("[%s] Results: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				order,
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
