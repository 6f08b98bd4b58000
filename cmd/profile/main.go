// Command profile drives the exchange pipeline under synthetic load
// while capturing a CPU profile for go tool pprof.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
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
	cpuFile, err := os.Create("cpu.prof")
	if err != nil {
		panic(err)
	}
	defer cpuFile.Close()

	pprof.StartCPUProfile(cpuFile)
	defer pprof.StopCPUProfile()

	fmt.Println("=== profiling started ===")
	fmt.Println("writing CPU profile: cpu.prof")

	settings := &config.Settings{
		Symbols:          []config.SymbolConfig{{Kind: "exchange_pair", Base: 1, Quote: 2}},
		RiskEngineShards: 4,
		QueueCapacity:    65536,
	}

	assembly, err := pipeline.New(settings, zerolog.Nop())
	if err != nil {
		panic(err)
	}

	duration := 10 * time.Second
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

	fmt.Printf("CPU cores: %d\n", numCPU)
	fmt.Printf("producers: %d\n", numWorkers)
	fmt.Printf("test duration: %v\n\n", duration)

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

	time.Sleep(duration)
	close(stopChan)
	time.Sleep(500 * time.Millisecond)
	cancel()

	elapsed := time.Since(startTime)
	totalOrders := orderCount.Load()
	stats := assembly.Stats()

	fmt.Println("\n=== results ===")
	fmt.Printf("total orders: %d\n", totalOrders)
	fmt.Printf("settlement events: %d\n", stats.Events)
	fmt.Printf("order throughput: %.0f orders/sec\n", float64(totalOrders)/elapsed.Seconds())
	fmt.Printf("event throughput: %.0f events/sec\n", float64(stats.Events)/elapsed.Seconds())

	fmt.Println("\nanalyze with:")
	fmt.Println("  go tool pprof -http=:8080 cpu.prof")
	fmt.Println("  or: go tool pprof cpu.prof, then: top10")
}
