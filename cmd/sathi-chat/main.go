// Command sathi-chat is a terminal chat panel for RBB Sathi. Common questions
// are answered locally; everything else goes to a running sathi-server.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"rbb-sathi-backend/internal/assistant"
	"rbb-sathi-backend/internal/chat"
	"rbb-sathi-backend/internal/intent"
	"rbb-sathi-backend/internal/logger"
)

type appConfig struct {
	endpoint  string
	rulesFile string
	delay     time.Duration
	timeout   time.Duration
	logFile   string
	logLevel  string
	altScreen bool
	open      bool
}

func parseFlags() appConfig {
	cfg := appConfig{}
	flag.StringVar(&cfg.endpoint, "endpoint", "http://localhost:8080/api/chat", "Chat endpoint of a running sathi-server")
	flag.StringVar(&cfg.rulesFile, "rules", "", "Optional YAML file overriding the built-in intent rules")
	flag.DurationVar(&cfg.delay, "delay", chat.DefaultReplyDelay, "Pause before a locally answered reply")
	flag.DurationVar(&cfg.timeout, "timeout", chat.DefaultTimeout, "Timeout for a remote reply")
	flag.StringVar(&cfg.logFile, "log-file", "", "Write logs to this file (discarded when empty)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flag.BoolVar(&cfg.altScreen, "alt-screen", false, "Use the terminal alternate screen")
	flag.BoolVar(&cfg.open, "open", true, "Start with the chat panel open")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	var out io.Writer = io.Discard
	if cfg.logFile != "" {
		f, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	log := logger.New(logger.Config{Level: cfg.logLevel, Output: out, Service: "sathi-chat"})

	spec, err := intent.DefaultSpec()
	if cfg.rulesFile != "" {
		spec, err = intent.LoadSpec(cfg.rulesFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load intent rules: %v\n", err)
		os.Exit(1)
	}
	resolver, err := intent.NewResolver(spec, intent.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build intent resolver: %v\n", err)
		os.Exit(1)
	}

	remote := assistant.NewClient(cfg.endpoint, &http.Client{Timeout: cfg.timeout + 5*time.Second})
	session := chat.NewSession(resolver, remote,
		chat.WithDelay(cfg.delay),
		chat.WithTimeout(cfg.timeout),
		chat.WithLogger(log),
	)
	if cfg.open {
		session.Open()
	}

	m := newModel(session)
	if cfg.open {
		m.input.Focus()
	}
	opts := []tea.ProgramOption{}
	if cfg.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "sathi-chat: %v\n", err)
		os.Exit(1)
	}
}
