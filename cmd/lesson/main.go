// Command lesson analyses one chapter PDF from the command line and prints
// its concepts, and optionally an explanation and a quiz, as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"lesson-byte/internal/adapter"
	"lesson-byte/internal/adapter/llm"
	"lesson-byte/internal/cache"
	"lesson-byte/internal/config"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/extractor"
	"lesson-byte/internal/logger"
	"lesson-byte/internal/prompt"
	"lesson-byte/internal/service"

	"go.uber.org/zap"
)

type report struct {
	File        string              `json:"file"`
	CharCount   int                 `json:"char_count"`
	Concepts    []domain.Concept    `json:"concepts"`
	Explanation *domain.Explanation `json:"explanation,omitempty"`
	Quiz        *domain.Quiz        `json:"quiz,omitempty"`
}

func main() {
	withQuiz := flag.Bool("quiz", false, "also generate a quiz from the chapter")
	concept := flag.String("concept", "", "explain this concept (must be one of the extracted concepts)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] chapter.pdf\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.Logger.Output = "stderr"
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	l := logger.Get()
	if cfg.ConfigFile != "" {
		l.Info("Using config file", zap.String("path", cfg.ConfigFile))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	model, err := llm.NewModel(cfg.LLM)
	if err != nil {
		l.Fatal("Failed to create LLM client", zap.Error(err))
	}

	budgets := make(prompt.Budgets, len(config.DefaultContextBudgets))
	for site := range config.DefaultContextBudgets {
		budgets[site] = cfg.ContextBudget(site)
	}
	prompts, err := prompt.NewRegistry(budgets)
	if err != nil {
		l.Fatal("Failed to parse prompt templates", zap.Error(err))
	}

	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			l.Warn("Redis unavailable; explanations will not be cached", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		}
	}

	lessons := service.NewLessonService(
		llm.NewGenerator(model, cfg.LLM.Temperature, cfg.LLM.Timeout),
		prompts,
		cacheAdapter,
		cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Explanation, 6*time.Hour),
		domain.QuizShape{QuestionCount: cfg.Lesson.QuizQuestionCount, OptionCount: cfg.Lesson.QuizOptionCount},
	)

	out, err := analyse(ctx, extractor.NewPDFExtractor(), lessons, path, domain.Concept(*concept), *withQuiz)
	if err != nil {
		l.Fatal("Failed to analyse chapter", zap.String("path", path), zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		l.Fatal("Failed to write report", zap.Error(err))
	}
}

func analyse(ctx context.Context, ex domain.TextExtractor, lessons service.LessonService, path string, concept domain.Concept, withQuiz bool) (*report, error) {
	text, err := ex.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	concepts, err := lessons.ExtractConcepts(ctx, text)
	if err != nil {
		return nil, err
	}
	out := &report{File: path, CharCount: len([]rune(text)), Concepts: concepts}

	if concept != "" {
		found := false
		for _, c := range concepts {
			if c == concept {
				found = true
				break
			}
		}
		if !found {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("%q is not one of the extracted concepts", concept))
		}
		if out.Explanation, err = lessons.GenerateExplanation(ctx, concept, text); err != nil {
			return nil, err
		}
	}
	if withQuiz {
		if out.Quiz, err = lessons.GenerateQuiz(ctx, text); err != nil {
			return nil, err
		}
	}
	return out, nil
}
