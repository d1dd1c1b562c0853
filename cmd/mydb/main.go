package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tuannm99/mydb"
	"github.com/tuannm99/mydb/internal"
	"github.com/tuannm99/mydb/internal/logutil"
)

const continuationPrompt = "...> "

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".mydb_history"
	}
	return filepath.Join(home, ".mydb_history")
}

func main() {
	fs := pflag.NewFlagSet("mydb", pflag.ExitOnError)
	var (
		cfgPath = fs.String("config", "", "YAML config file")
		oneShot = fs.StringP("command", "c", "", "execute the given statements and exit")
	)
	fs.String("data-dir", "DB", "directory holding table stores")
	fs.Bool("memory", false, "keep everything in memory")
	fs.Bool("sync", false, "fsync every write")
	fs.String("log-level", "warn", "debug | info | warn | error")
	fs.String("log-file", "", "rotate logs into this file instead of stderr")
	fs.String("history", "", "readline history file (default ~/.mydb_history)")
	_ = fs.Parse(os.Args[1:])

	cfg, err := internal.LoadConfig(*cfgPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Repl.HistoryFile == "" {
		cfg.Repl.HistoryFile = defaultHistoryPath()
	}

	log, err := logutil.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	db, err := mydb.Open(cfg, log)
	if err != nil {
		log.Error("open database", zap.Error(err))
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	s := &session{db: db, out: os.Stdout, prompt: cfg.Repl.Prompt}

	if strings.TrimSpace(*oneShot) != "" {
		s.Feed(*oneShot)
		if s.Incomplete() {
			fmt.Fprintf(os.Stderr, "unterminated statement: %s\n", strings.TrimSpace(s.pending))
			os.Exit(1)
		}
		return
	}

	if err := runREPL(s, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
}

func runREPL(s *session, cfg *mydb.Config) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 cfg.Repl.Prompt,
		HistoryFile:            cfg.Repl.HistoryFile,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
	})
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	var typed strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C drops the statement being typed.
			s.Reset()
			typed.Reset()
			rl.SetPrompt(cfg.Repl.Prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		if typed.Len() > 0 {
			typed.WriteByte(' ')
		}
		typed.WriteString(line)

		if s.Feed(line) {
			return nil
		}
		if s.Incomplete() {
			rl.SetPrompt(continuationPrompt)
			continue
		}
		if stmt := compactOneLine(typed.String()); stmt != "" {
			_ = rl.SaveHistory(stmt)
		}
		typed.Reset()
		rl.SetPrompt(cfg.Repl.Prompt)
	}
}
