package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loanpicks.com/loan-picks/internal/api"
	"loanpicks.com/loan-picks/internal/config"
	"loanpicks.com/loan-picks/internal/core"
	"loanpicks.com/loan-picks/internal/llm"
	"loanpicks.com/loan-picks/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Command line flag for catalog seeding
	seedFlag := flag.Bool("seed", false, "Seed the product catalog and exit")
	flag.Parse()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	if *seedFlag {
		numSeeded, err := dbStore.SeedProducts()
		if err != nil {
			log.Fatalf("Catalog seeding failed: %v", err)
		}
		log.Printf("Catalog seeding complete (%d products). Exiting.", numSeeded)
		os.Exit(0)
	}

	// Select the assistant provider from configuration
	generator, err := llm.FromConfig(config.AppConfig)
	if err != nil {
		log.Fatalf("Failed to initialize assistant provider: %v", err)
	}
	defer generator.Close()

	// Initialize services
	accountService := core.NewAccountService(dbStore)
	catalogService := core.NewCatalogService(dbStore)
	assistantService := core.NewAssistantService(dbStore, generator)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(accountService, catalogService, assistantService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
