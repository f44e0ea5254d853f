package main

import (
	"context"
	"fmt"
	"time"

	"github.com/anooppatell7/education-pixel-backend/internal/config"
	"github.com/anooppatell7/education-pixel-backend/internal/database"
	"github.com/anooppatell7/education-pixel-backend/internal/logger"
	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/repository"
)

type demoQuestion struct {
	text    string
	options []string
	correct int
	explain string
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	testRepo := repository.NewTestRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)

	fmt.Println("=== Seeding Demo Test ===")

	test := &model.MockTest{
		Title:           "Tally Prime Fundamentals",
		Course:          "Tally",
		DurationMinutes: 30,
		IsPublished:     true,
	}
	if err := testRepo.Create(ctx, test); err != nil {
		log.Fatal().Err(err).Msg("Failed to create test")
	}
	fmt.Printf("Created test %s (%s)\n", test.Title, test.ID)

	questions := []demoQuestion{
		{
			text:    "Which shortcut key creates a new company in Tally Prime?",
			options: []string{"Alt+F1", "Alt+F3", "Ctrl+N", "F11"},
			correct: 1,
			explain: "Alt+F3 opens the company menu where a new company can be created.",
		},
		{
			text:    "Which voucher type records a cash purchase?",
			options: []string{"Payment", "Receipt", "Contra", "Journal"},
			correct: 0,
			explain: "Cash purchases are entered through a payment voucher.",
		},
		{
			text:    "The Balance Sheet in Tally is prepared from which menu?",
			options: []string{"Gateway of Tally", "Company Info", "Display", "Accounts Info"},
			correct: 0,
			explain: "Gateway of Tally lists Balance Sheet as a top-level report.",
		},
		{
			text:    "GST in Tally Prime is enabled through which feature screen?",
			options: []string{"F10", "F11", "F12", "Alt+G"},
			correct: 1,
			explain: "F11 company features control statutory options including GST.",
		},
		{
			text:    "Which ledger group does 'Cash-in-hand' belong to by default?",
			options: []string{"Current Liabilities", "Current Assets", "Direct Expenses", "Capital Account"},
			correct: 1,
			explain: "Cash-in-hand is a predefined group under Current Assets.",
		},
	}

	for i, dq := range questions {
		q := &model.Question{
			TestID:        test.ID,
			QuestionText:  dq.text,
			Options:       dq.options,
			CorrectOption: dq.correct,
			Marks:         1,
			Explanation:   dq.explain,
			OrderNum:      i + 1,
		}
		if err := testRepo.AddQuestion(ctx, q); err != nil {
			log.Fatal().Err(err).Int("order", i+1).Msg("Failed to add question")
		}
	}
	fmt.Printf("Added %d questions\n", len(questions))

	registrations := []model.Registration{
		{Number: "EP-REG-1001", CandidateName: "Asha Verma", Course: "Tally", FranchiseCode: "FR-DEL-01"},
		{Number: "EP-REG-1002", CandidateName: "Rahul Nair", Course: "Tally", FranchiseCode: "FR-DEL-01"},
		{Number: "EP-REG-1003", CandidateName: "Priya Singh", Course: "Tally", FranchiseCode: "FR-MUM-02"},
	}
	for i := range registrations {
		if err := registrationRepo.Create(ctx, &registrations[i]); err != nil {
			log.Fatal().Err(err).Str("number", registrations[i].Number).Msg("Failed to create registration")
		}
	}
	fmt.Printf("Seeded %d registrations\n", len(registrations))

	fmt.Println("Done.")
}
