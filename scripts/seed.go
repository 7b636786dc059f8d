//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/budget"
	"github.com/eventra/eventra/internal/database"
	"github.com/eventra/eventra/internal/events"
	"github.com/eventra/eventra/internal/team"
	"github.com/eventra/eventra/pkg/config"
	"github.com/eventra/eventra/pkg/util"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	name := os.Getenv("SEED_NAME")
	org := os.Getenv("SEED_ORGANIZATION")

	if email == "" {
		email = "manager@example.com"
	}
	if password == "" {
		password = "manager123!"
	}
	if name == "" {
		name = "Demo Manager"
	}
	if org == "" {
		org = "Demo Events Co"
	}

	ctx := context.Background()

	resp, err := authService.Register(ctx, auth.RegisterInput{
		Email:        email,
		Password:     password,
		Name:         name,
		Organization: org,
	})
	if err != nil {
		if err == auth.ErrUserExists {
			fmt.Printf("Seed user already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create seed user: %v", err)
	}
	manager := resp.User

	teamService := team.NewService(db)
	lead, err := teamService.CreateUser(ctx, manager, team.CreateUserInput{
		Email:    "lead@example.com",
		Name:     "Demo Lead",
		Password: password,
		Role:     "Team Lead",
	})
	if err != nil {
		log.Fatalf("failed to create team lead: %v", err)
	}

	eventService := events.NewService(db)
	event, err := eventService.Create(ctx, manager, events.CreateInput{
		Name:           "Product Launch",
		Location:       "Downtown Convention Center",
		EventDate:      time.Now().AddDate(0, 2, 0),
		ExpectedBudget: decimal.NewFromInt(25000),
		TeamLeadID:     &lead.ID,
	})
	if err != nil {
		log.Fatalf("failed to create event: %v", err)
	}

	budgetService := budget.NewService(db)
	item, err := budgetService.CreateItem(ctx, manager, event.ID, budget.ItemInput{
		Category:      "catering",
		Name:          "Buffet dinner",
		EstimatedCost: decimal.NewFromInt(8000),
	})
	if err != nil {
		log.Fatalf("failed to create budget item: %v", err)
	}

	if _, err := budgetService.CreateExpense(ctx, manager, event.ID, budget.ExpenseInput{
		BudgetItemID: &item.ID,
		Name:         "Caterer deposit",
		Amount:       decimal.NewFromInt(2000),
	}); err != nil {
		log.Fatalf("failed to create expense: %v", err)
	}

	fmt.Printf("Seed data created successfully!\n")
	fmt.Printf("Manager: %s\n", manager.Email)
	fmt.Printf("Organization: %s\n", manager.Organization)
	fmt.Printf("Event: %s (%s)\n", event.Name, event.ID)
	fmt.Printf("Token: %s\n", resp.Token)
}
