// cmd/historian/main.go runs the asynchronous historian service: it drains
// the Redis action queue and persists game action records to PostgreSQL.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/mkarlin/onenight/internal/historian"
)

func main() {
	hs := historian.NewService()
	go hs.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	hs.Stop()
	log.Println("Historian shutdown complete.")
}
