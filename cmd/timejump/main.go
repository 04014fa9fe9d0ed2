package main

import (
	"log"
	_ "time/tzdata" // reference zones resolve even on images without /usr/share/zoneinfo

	"github.com/MrSnakeDoc/timejump/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ timejump failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ timejump stopped with error: %v", err)
	}
}
