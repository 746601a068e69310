package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/database"
	"github.com/bughuntlab/bughunt-backend/internal/logger"
	"github.com/bughuntlab/bughunt-backend/internal/model"
	"github.com/bughuntlab/bughunt-backend/internal/repository"
)

// seedQuestion mirrors the question shape minus server-assigned fields.
type seedQuestion struct {
	QuestionCode     string                                 `json:"question_code"`
	ProblemStatement string                                 `json:"problem_statement"`
	Constraints      []string                               `json:"constraints"`
	Examples         []model.Example                        `json:"examples"`
	QuestionSet      string                                 `json:"question_set"`
	Languages        map[model.Language]model.LanguageBlock `json:"languages"`
}

func main() {
	var file string
	flag.StringVar(&file, "file", "questions.json", "Path to the questions JSON file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	raw, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read questions file")
	}

	var seeds []seedQuestion
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse questions file")
	}

	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Printf("=== Seeding %d Questions ===\n", len(seeds))

	successCount := 0
	for _, seed := range seeds {
		q := &model.Question{
			QuestionCode:     seed.QuestionCode,
			ProblemStatement: seed.ProblemStatement,
			Constraints:      seed.Constraints,
			Examples:         seed.Examples,
			QuestionSet:      model.QuestionSet(seed.QuestionSet),
			Languages:        seed.Languages,
			IsActive:         true,
		}
		if q.Constraints == nil {
			q.Constraints = []string{}
		}
		if q.Examples == nil {
			q.Examples = []model.Example{}
		}

		if err := questionRepo.Create(ctx, q); err != nil {
			fmt.Printf("Error creating question %s: %v\n", seed.QuestionCode, err)
			continue
		}
		successCount++
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d questions.\n", successCount, len(seeds))
}
