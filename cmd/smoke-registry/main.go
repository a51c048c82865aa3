package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"ptaregistry.org/internal/application"
	"ptaregistry.org/internal/recordstore/rest"
	"ptaregistry.org/internal/registry"
	"ptaregistry.org/internal/session"
)

// Exercises a live record store end to end: resync, register a permit, find
// it through search, delete it with confirmation, and verify it is gone.
func main() {
	baseURL := os.Getenv("PTA_STORE_URL")
	if baseURL == "" {
		log.Fatal("PTA_STORE_URL is required")
	}

	client, err := rest.New(baseURL, os.Getenv("PTA_STORE_KEY"))
	if err != nil {
		log.Fatalf("record store: %v", err)
	}

	cache := session.New(client)
	svc, err := application.NewService(client, cache, application.WithLoginDelay(0))
	if err != nil {
		log.Fatalf("service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := cache.Resync(ctx); err != nil {
		log.Fatalf("resync: %v", err)
	}
	before := len(cache.Permits())

	reg := fmt.Sprintf("SMK %03d ZZ", rand.Intn(1000))
	permit, err := svc.RegisterPermit(ctx, application.RegistrationForm{
		OperatorName: "Smoke Transit Services",
		VehicleReg:   reg,
		Route:        "Smoke Test Loop",
		ExpiryDate:   time.Now().AddDate(1, 0, 0).Format(registry.DateLayout),
	})
	if err != nil {
		log.Fatalf("register permit: %v", err)
	}

	found, ok := registry.Search(cache.Permits(), permit.PermitNumber)
	if !ok || found.ID != permit.ID {
		log.Fatalf("search did not return the new permit %s", permit.PermitNumber)
	}

	if _, err := svc.DeletePermit(ctx, permit.ID, true); err != nil {
		log.Fatalf("delete permit: %v", err)
	}
	if _, ok := registry.Search(cache.Permits(), permit.PermitNumber); ok {
		log.Fatalf("permit %s still present after deletion", permit.PermitNumber)
	}
	if got := len(cache.Permits()); got != before {
		log.Fatalf("permit count drifted: before=%d after=%d", before, got)
	}

	fmt.Printf("✅ registry smoke test passed: permit=%s\n", permit.PermitNumber)
}
