package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mscript-quiz-client/internal/app"
	"mscript-quiz-client/internal/config"
	"mscript-quiz-client/internal/domain"
	"mscript-quiz-client/internal/infra/memory"
	"mscript-quiz-client/internal/infra/remote"
	transport "mscript-quiz-client/internal/transport/http"
	"mscript-quiz-client/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start a quiz attempt.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Fetch the question set, start the countdown, and serve the local UI bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd.Context(), *configPath, *port)
		},
	}
}

func runClient(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.File)
	defer log.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	baseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		source app.QuestionSource
		grader app.Grader
	)
	if cfg.Remote.BaseURL != "" {
		client := remote.NewClient(
			cfg.Remote.BaseURL,
			cfg.Remote.SessionCookie,
			config.DurationOr(cfg.Remote.Timeout, 30*time.Second),
			log,
		)
		source = client
		grader = client
		go client.KeepAlive(baseCtx, config.DurationOr(cfg.Quiz.KeepAliveInterval, remote.DefaultKeepAliveInterval))
	} else {
		// No collaborator configured: run the built-in demo set with local
		// grading, same shape as the remote endpoints.
		set, key := sampleQuestionSet()
		source = memory.NewSource(set)
		grader = memory.NewGrader(set, key)
		log.Info("no remote base URL configured, using built-in demo quiz")
	}

	defaultDuration := config.DurationOr(cfg.Quiz.DefaultDuration, app.DefaultDuration)
	attempt, err := app.StartAttempt(baseCtx, source, grader, defaultDuration)
	if err != nil {
		// Fatal to this attempt: the user restarts after fixing the cause,
		// there is no automatic retry.
		log.Error("failed to load questions", zap.Error(err))
		return err
	}
	defer attempt.Close()

	logoutPath := cfg.Remote.LogoutPath
	if logoutPath == "" {
		logoutPath = "/logout"
	}
	wsHandler := transport.NewWSHandler(baseCtx, attempt, cfg.Remote.BaseURL+logoutPath, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("quiz attempt started", zap.String("port", finalPort), zap.Int("remaining", attempt.Remaining()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down")
	case <-ctx.Done():
		log.Info("context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestionSet is the demo fixture used when no remote collaborator is
// configured.
func sampleQuestionSet() (domain.QuestionSet, memory.AnswerKey) {
	set := domain.QuestionSet{
		Duration: 5 * time.Minute,
		Questions: []domain.Question{
			{
				ID:      "1",
				Prompt:  "Which operator assigns a value to a variable?",
				Options: []string{"==", "=", ":=", "=>"},
			},
			{
				ID:       "2",
				Prompt:   "Select every statement that ends the current loop iteration early.\n[DIAGRAM]graph TD; loop-->continue; loop-->break[/DIAGRAM]",
				Options:  []string{"continue", "break", "return", "yield"},
				Multiple: true,
			},
			{
				ID:      "3",
				Prompt:  "What does a function return when no return statement runs?",
				Options: []string{"zero", "an empty string", "nothing", "an error"},
			},
		},
	}
	key := memory.AnswerKey{
		Correct: map[string][]string{
			"1": {"="},
			"2": {"continue", "break"},
			"3": {"nothing"},
		},
		Sections: map[string][]string{
			"Basics":       {"1", "3"},
			"Control flow": {"2"},
		},
	}
	return set, key
}
