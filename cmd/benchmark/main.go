// Command benchmark drives the exchange pipeline with synthetic,
// crossing order flow and reports order/settlement throughput.
package main

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"matching-core/config"
	"matching-core/domain"
	"matching-core/envelope"
	"matching-core/pipeline"
	"matching-core/risk"
)

func main() {
	fmt.Println("=== exchange pipeline throughput benchmark ===")

	settings := &config.Settings{
		Symbols:          []config.SymbolConfig{{Kind: "exchange_pair", Base: 1, Quote: 2}},
		RiskEngineShards: 4,
		QueueCapacity:    65536,
	}

	assembly, err := pipeline.New(settings, zerolog.Nop())
	if err != nil {
		panic(err)
	}

	testDuration := 5 * time.Second
	numCPU := runtime.NumCPU()
	numWorkers := numCPU - 2
	if numWorkers < 1 {
		numWorkers = 1
	}

	for w := 0; w < numWorkers; w++ {
		assembly.AddParticipant(risk.NewParticipant(domain.ParticipantID(w), map[domain.AssetID]uint64{
			1: 1_000_000_000,
			2: 1_000_000_000,
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go assembly.Run(ctx)

	fmt.Printf("starting test...\n")
	fmt.Printf("CPU cores: %d\n", numCPU)
	fmt.Printf("producers: %d (NumCPU - 2)\n", numWorkers)
	fmt.Printf("test duration: %v\n\n", testDuration)

	var orderCount atomic.Int64
	startTime := time.Now()
	stopChan := make(chan struct{})

	for w := 0; w < numWorkers; w++ {
		go func(workerID int) {
			orderID := domain.OrderID(workerID) << 40
			for {
				select {
				case <-stopChan:
					return
				default:
					var side domain.Side
					if orderID%2 == 0 {
						side = domain.Bid
					} else {
						side = domain.Ask
					}
					price := domain.Price(900 + uint64(orderID)%200)
					_ = assembly.Submit(envelope.TradeCommand{
						ID:            orderID,
						ParticipantID: domain.ParticipantID(workerID),
						Symbol:        0,
						Side:          side,
						Limit:         price,
						Volume:        1,
					})
					orderCount.Add(1)
					orderID++
				}
			}
		}(w)
	}

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			elapsed := time.Since(startTime)
			orders := orderCount.Load()
			stats := assembly.Stats()
			fmt.Printf("[%.0fs] orders: %d (%.0f/s) | admitted: %d | events: %d\n",
				elapsed.Seconds(), orders, float64(orders)/elapsed.Seconds(), stats.Admitted, stats.Events)
		}
	}()

	time.Sleep(testDuration)
	close(stopChan)
	ticker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()

	elapsed := time.Since(startTime)
	totalOrders := orderCount.Load()
	stats := assembly.Stats()

	qps := float64(totalOrders) / elapsed.Seconds()
	eps := float64(stats.Events) / elapsed.Seconds()

	fmt.Println("\n=== results ===")
	fmt.Printf("duration:        %v\n", elapsed)
	fmt.Printf("orders submitted: %d\n", totalOrders)
	fmt.Printf("commands admitted: %d\n", stats.Admitted)
	fmt.Printf("commands rejected: %d\n", stats.Rejected)
	fmt.Printf("settlement events: %d\n", stats.Events)
	fmt.Printf("order throughput: %.0f orders/sec\n", qps)
	fmt.Printf("event throughput: %.0f events/sec\n", eps)
}
