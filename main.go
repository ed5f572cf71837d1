package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"gemma-chatbot/chat"
	"gemma-chatbot/config"
	"gemma-chatbot/data"
	"gemma-chatbot/db"
	"gemma-chatbot/history"
	"gemma-chatbot/llm"
	"gemma-chatbot/utils"
)

var (
	version = "0.1.0"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Gemma Chatbot v%s\n", version)
		os.Exit(0)
	}

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.Data.LogPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting Gemma Chatbot v%s", version)

	store, err := db.New(cfg.Data.DBPath)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Database initialized: %s", cfg.Data.DBPath)
	if !store.SearchAvailable() {
		logger.Info("Full-text search disabled: sqlite built without the fts5 module")
	}

	ctx := context.Background()
	if n, err := store.SeedSamplesIfEmpty(ctx, data.DefaultSamples); err != nil {
		logger.Error("Failed to seed sample data: %v", err)
		os.Exit(1)
	} else if n > 0 {
		logger.Info("Seeded %d sample entries", n)
	}

	provider, err := newProvider(cfg.Provider)
	if err != nil {
		logger.Error("Failed to create provider: %v", err)
		os.Exit(1)
	}
	if err := provider.ValidateConfig(); err != nil {
		logger.Error("Provider configuration invalid: %v", err)
		os.Exit(1)
	}
	logger.Info("Using provider: %s (%s)", provider.Name(), cfg.Provider.Model)

	chatSvc := chat.NewService(provider, store, logger)
	historySvc := history.NewService(store)

	defer utils.RecoverFromPanic(logger, "main loop")
	run(ctx, store, chatSvc, historySvc, logger)
	logger.Info("Application stopped")
}

func newProvider(cfg config.Provider) (llm.Provider, error) {
	providerCfg := llm.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}
	switch cfg.Kind {
	case "openai":
		return llm.NewOpenAIProvider(providerCfg)
	case "ollama":
		return llm.NewOllamaProvider(providerCfg)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}

// run drives a minimal interactive loop over stdin. Plain input is sent
// as a chat prompt; /commands exercise the history and feedback paths.
func run(ctx context.Context, store *db.DB, chatSvc *chat.Service, historySvc *history.Service, logger *utils.Logger) {
	clientID := uuid.New()
	var current int64
	var lastAssistant int64

	fmt.Println("Gemma Chatbot. Type a message, or /help for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			if current == 0 {
				conv, err := chatSvc.StartConversation(ctx, "")
				if err != nil {
					fmt.Printf("error: %v\n", err)
					continue
				}
				current = conv.ID
			}
			exchange, err := chatSvc.Send(ctx, current, line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			lastAssistant = exchange.Assistant.ID
			fmt.Println(exchange.Assistant.Content)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "/help":
			fmt.Println("/new                 start a new conversation")
			fmt.Println("/rate up|down [text] rate the last response")
			fmt.Println("/history             list conversations")
			fmt.Println("/show <id>           show a conversation")
			fmt.Println("/delete <id>         delete a conversation")
			fmt.Println("/samples             list sample entries")
			fmt.Println("/search <query>      full-text search messages")
			fmt.Println("/stats               feedback statistics")
			fmt.Println("/vacuum              compact the database file")
			fmt.Println("/quit                exit")
		case "/new":
			current = 0
			lastAssistant = 0
			fmt.Println("started a new conversation")
		case "/rate":
			if lastAssistant == 0 || len(fields) < 2 {
				fmt.Println("nothing to rate, or missing rating")
				continue
			}
			comment := strings.Join(fields[2:], " ")
			fb, err := chatSvc.SubmitFeedback(ctx, lastAssistant, fields[1], comment, clientID)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if fb.AutoScore != nil {
				fmt.Printf("recorded %s (auto score %.3f)\n", fb.Rating, *fb.AutoScore)
			} else {
				fmt.Printf("recorded %s\n", fb.Rating)
			}
		case "/history":
			summaries, err := historySvc.Browse(ctx, history.DefaultPageSize, 0)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			for _, s := range summaries {
				title := s.Title
				if title == "" {
					title = "(untitled)"
				}
				line := fmt.Sprintf("#%d %s - %d messages, last activity %s",
					s.ID, title, s.MessageCount, s.LastActivity.Format("2006-01-02 15:04"))
				if s.AvgAutoScore != nil {
					line += fmt.Sprintf(", avg score %.3f", *s.AvgAutoScore)
				}
				fmt.Println(line)
			}
		case "/show":
			id := parseID(fields)
			if id == 0 {
				fmt.Println("usage: /show <id>")
				continue
			}
			out, err := historySvc.ExportMarkdown(ctx, id)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Print(out)
		case "/delete":
			id := parseID(fields)
			if id == 0 {
				fmt.Println("usage: /delete <id>")
				continue
			}
			if err := chatSvc.DeleteConversation(ctx, id); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if id == current {
				current = 0
				lastAssistant = 0
			}
			fmt.Println("deleted")
		case "/samples":
			samples, err := historySvc.Samples(ctx)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			for _, entry := range samples {
				fmt.Printf("#%d %s\n", entry.ID, entry.Prompt)
			}
		case "/search":
			if len(fields) < 2 {
				fmt.Println("usage: /search <query>")
				continue
			}
			results, err := historySvc.Search(ctx, strings.Join(fields[1:], " "), 10)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			for _, r := range results {
				fmt.Printf("#%d [%s] %s\n", r.Message.ConversationID, r.Message.Role, r.Snippet)
			}
		case "/stats":
			stats, err := historySvc.ScoreStats(ctx)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("feedback: %d (up %d / down %d), scored: %d\n",
				stats.FeedbackCount, stats.RatingCounts[db.RatingUp], stats.RatingCounts[db.RatingDown], stats.ScoredCount)
			if stats.AvgAutoScore != nil {
				fmt.Printf("avg auto score: %.3f\n", *stats.AvgAutoScore)
			}
		case "/vacuum":
			if err := store.Vacuum(); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if stats, err := store.GetStats(); err == nil {
				fmt.Printf("vacuumed, database is now %d bytes\n", stats.DBSizeBytes)
			} else {
				fmt.Println("vacuumed")
			}
		case "/quit", "/exit":
			return
		default:
			fmt.Println("unknown command, try /help")
		}
	}
}

func parseID(fields []string) int64 {
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
