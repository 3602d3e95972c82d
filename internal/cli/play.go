package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"quizzle/internal/config"
	"quizzle/internal/domain"
	"quizzle/internal/engine"
	"quizzle/internal/leaderboard"
	"quizzle/internal/logger"
	"quizzle/internal/trivia"
)

// NewPlayCmd builds the terminal quiz runner: it drives a full session
// against the trivia provider and posts the result to the leaderboard.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		difficulty string
		categoryID int
		questions  int
		username   string
		serverURL  string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				// The play command works without a config file.
				cfg = config.Config{}
			}

			baseURL := cfg.Trivia.BaseURL
			if serverURL == "" {
				serverURL = cfg.Leaderboard.URL
			}

			opts := domain.QuizOptions{
				Difficulty:    domain.Difficulty(difficulty),
				CategoryID:    categoryID,
				QuestionCount: questions,
			}

			return runQuiz(cmd.Context(), opts, baseURL, serverURL, username)
		},
	}

	cmd.Flags().StringVar(&difficulty, "difficulty", "all", "question difficulty: easy, medium, hard, all")
	cmd.Flags().IntVar(&categoryID, "category", 0, "category ID, 0 for all")
	cmd.Flags().IntVar(&questions, "questions", 10, "number of questions")
	cmd.Flags().StringVar(&username, "username", "", "username for the leaderboard")
	cmd.Flags().StringVar(&serverURL, "server", "", "leaderboard API base URL")
	return cmd
}

func runQuiz(ctx context.Context, opts domain.QuizOptions, triviaURL, serverURL, username string) error {
	log := logger.New("", "")
	defer log.Sync()

	client := trivia.NewClient(triviaURL, nil)
	session, err := engine.NewSession(engine.Config{
		Options:   opts,
		Tokens:    trivia.NewTokenManager(client),
		Questions: trivia.NewSupplier(client),
		Logger:    log,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	updates, cancel := session.Subscribe()
	defer cancel()

	input := readLines(ctx)

	fmt.Println("Fetching questions...")
	if err := session.Start(ctx); err != nil {
		return err
	}

	var current *domain.Question
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if snap.Err != nil {
				return snap.Err
			}

			switch snap.State {
			case engine.StateAwaitingAnswer:
				current = snap.Question
				fmt.Printf("\nQuestion %d/%d (%s, %ds to answer)\n%s\n",
					snap.QuestionIndex+1, snap.QuestionCount,
					snap.Question.Difficulty,
					int(snap.TimeRemaining/time.Second),
					snap.Question.Text)
				for i, alt := range snap.Question.Alternatives {
					fmt.Printf("  %d) %s\n", i+1, alt)
				}
				fmt.Print("> ")

			case engine.StateRevealing:
				if snap.Picked == snap.Question.CorrectAlternative && snap.AwardedPoints > 0 {
					fmt.Printf("Correct! +%d points (streak %d, total %d)\n",
						snap.AwardedPoints, snap.Streak, snap.TotalScore)
				} else {
					fmt.Printf("The correct answer was: %s (total %d)\n",
						snap.Question.CorrectAlternative, snap.TotalScore)
				}

			case engine.StateCompleted:
				fmt.Printf("\nGame ended. You got %d points!\n", snap.TotalScore)
				return submitResult(ctx, session, serverURL, username)
			}

		case line := <-input:
			if current == nil {
				continue
			}
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > len(current.Alternatives) {
				fmt.Printf("Pick a number between 1 and %d\n> ", len(current.Alternatives))
				continue
			}
			if err := session.PickAnswer(current.Alternatives[n-1]); err != nil {
				return err
			}
		}
	}
}

func submitResult(ctx context.Context, session *engine.Session, serverURL, username string) error {
	if serverURL == "" || username == "" {
		return nil
	}

	score, categoryID := session.Result()
	result, err := leaderboard.NewHTTPClient(serverURL, nil).SubmitScore(ctx, username, score, categoryID)
	if err != nil {
		// The quiz result stands even when the submission fails.
		if errors.Is(err, domain.ErrLeaderboardSubmit) {
			fmt.Println("Could not save your score to the leaderboard.")
			return nil
		}
		return err
	}

	if result.Position > 0 {
		fmt.Printf("You reached leaderboard position %d!\n", result.Position)
	}
	if result.IsPersonalRecord {
		fmt.Println("It's a new personal record!")
	}
	return nil
}

func readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
