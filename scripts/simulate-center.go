package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/spf13/pflag"
	"github.com/vogiaan1904/spotqueue/internal/delivery/kafka"
	"github.com/vogiaan1904/spotqueue/internal/service"
	pkgKafka "github.com/vogiaan1904/spotqueue/pkg/kafka"
)

var (
	apiURL         = pflag.String("api", "http://localhost:8081", "SpotQueue HTTP API base URL")
	brokers        = pflag.StringSlice("brokers", []string{"localhost:9092"}, "Kafka brokers")
	centerID       = pflag.String("center", "", "Center ID (required)")
	numUsers       = pflag.Int("users", 50, "Number of tickets to book")
	workers        = pflag.Int("workers", 10, "Concurrent booking requests")
	notifyBefore   = pflag.Int("notify-before", 10, "notify_before_minutes for every ticket")
	cancelRate     = pflag.Float64("cancel-rate", 0.1, "Probability a waiting ticket is cancelled per tick (0.0-1.0)")
	serveInterval  = pflag.Duration("serve-interval", 5*time.Second, "Interval between center ready/completed signals")
	simulate       = pflag.Bool("simulate", false, "Keep serving tickets until the queue drains or Ctrl+C")
	requestTimeout = pflag.Duration("timeout", 10*time.Second, "HTTP request timeout")
)

type apiResp struct {
	Message string                   `json:"message"`
	Data    service.BookTicketOutput `json:"data"`
}

func main() {
	pflag.Parse()

	if *centerID == "" {
		fmt.Println("Error: --center flag is required")
		pflag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: *requestTimeout}

	ticketIDs := bookTickets(ctx, client)
	fmt.Printf("\n✅ Booked %d tickets at center %s\n", len(ticketIDs), *centerID)

	if !*simulate {
		fmt.Println("\n💡 Tip: Use --simulate to emit ready/completed signals and random cancels")
		return
	}

	prod, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
		Brokers:      *brokers,
		RetryMax:     3,
		RequiredAcks: int(sarama.WaitForLocal),
	})
	if err != nil {
		fmt.Printf("Failed to connect to Kafka: %v\n", err)
		os.Exit(1)
	}
	defer prod.Close()

	fmt.Printf("\n🎬 Serving tickets every %v (cancel rate %.0f%%). Press Ctrl+C to stop\n\n", *serveInterval, *cancelRate*100)
	runSimulation(ctx, client, prod, ticketIDs)
}

func bookTickets(ctx context.Context, client *http.Client) []string {
	var (
		mu  sync.Mutex
		ids = make([]string, 0, *numUsers)
		wg  sync.WaitGroup
	)

	jobs := make(chan int)
	startTime := time.Now()

	for range *workers {
		wg.Go(func() {
			for range jobs {
				out, err := book(ctx, client)
				if err != nil {
					fmt.Printf("❌ Booking failed: %v\n", err)
					continue
				}
				mu.Lock()
				ids = append(ids, out.Ticket.ID)
				mu.Unlock()
			}
		})
	}

	for i := range *numUsers {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(startTime)
	fmt.Printf("⏱️  Completed in %v (%.1f bookings/sec)\n", elapsed, float64(len(ids))/elapsed.Seconds())

	return ids
}

func book(ctx context.Context, client *http.Client) (service.BookTicketOutput, error) {
	body, _ := json.Marshal(service.BookTicketInput{CenterID: *centerID, NotifyBeforeMinutes: *notifyBefore})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *apiURL+"/api/v1/tickets", bytes.NewReader(body))
	if err != nil {
		return service.BookTicketOutput{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return service.BookTicketOutput{}, err
	}
	defer res.Body.Close()

	var out apiResp
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return service.BookTicketOutput{}, err
	}
	if res.StatusCode != http.StatusCreated {
		return service.BookTicketOutput{}, fmt.Errorf("status %d: %s", res.StatusCode, out.Message)
	}
	return out.Data, nil
}

func cancel(ctx context.Context, client *http.Client, ticketID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *apiURL+"/api/v1/tickets/"+ticketID+"/cancel", nil)
	if err != nil {
		return err
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", res.StatusCode)
	}
	return nil
}

func sendSignal(prod sarama.SyncProducer, topic string, v any, key string) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, _, err = prod.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(val),
	})
	return err
}

func runSimulation(ctx context.Context, client *http.Client, prod sarama.SyncProducer, waiting []string) {
	ticker := time.NewTicker(*serveInterval)
	defer ticker.Stop()

	var serving string
	served, cancelled := 0, 0

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\n🛑 Stopped: served %d, cancelled %d, still waiting %d\n", served, cancelled, len(waiting))
			return
		case <-ticker.C:
		}

		if serving != "" {
			if err := sendSignal(prod, kafka.TopicCenterTicketCompleted, kafka.CenterTicketCompletedEvent{
				TicketID:  serving,
				CenterID:  *centerID,
				Timestamp: time.Now(),
			}, *centerID); err != nil {
				fmt.Printf("❌ Failed to send completed signal: %v\n", err)
			} else {
				served++
			}
			serving = ""
		}

		// Random cancels among the waiting tickets
		kept := waiting[:0]
		for _, id := range waiting {
			if rand.Float64() < *cancelRate {
				if err := cancel(ctx, client, id); err == nil {
					cancelled++
					continue
				}
			}
			kept = append(kept, id)
		}
		waiting = kept

		if len(waiting) == 0 {
			fmt.Printf("\n🎉 Queue drained: served %d, cancelled %d\n", served, cancelled)
			return
		}

		serving, waiting = waiting[0], waiting[1:]
		if err := sendSignal(prod, kafka.TopicCenterTicketReady, kafka.CenterTicketReadyEvent{
			TicketID:  serving,
			CenterID:  *centerID,
			Timestamp: time.Now(),
		}, *centerID); err != nil {
			fmt.Printf("❌ Failed to send ready signal: %v\n", err)
		}

		fmt.Printf("[%s] Serving: %s | Waiting: %d | Served: %d | Cancelled: %d\n",
			time.Now().Format("15:04:05"), serving, len(waiting), served, cancelled)
	}
}
