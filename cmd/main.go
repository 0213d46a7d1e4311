package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/claimintake-backend/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		a.Log.Fatal("Server failed", "error", err)
	}
}
