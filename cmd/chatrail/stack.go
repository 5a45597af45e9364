package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/christopherklint97/chatrail/internal/config"
	"github.com/christopherklint97/chatrail/internal/directory"
	"github.com/christopherklint97/chatrail/internal/match"
	"github.com/christopherklint97/chatrail/internal/notify"
	"github.com/christopherklint97/chatrail/internal/schedule"
	"github.com/christopherklint97/chatrail/internal/sequencer"
	"github.com/christopherklint97/chatrail/internal/store"
	"github.com/christopherklint97/chatrail/internal/synth"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// stack is everything a command needs to hold a conversation.
type stack struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile *os.File
	db      *store.DB
	dir     directory.Service
	synth   *synth.Synthesizer
}

// openStack builds the directory and responder from cfg. Without a log file
// the chat panel logs nowhere, while the one-shot commands log to stderr.
func openStack(ctx context.Context, cfg *config.Config, toStderr bool) (*stack, error) {
	st := &stack{cfg: cfg}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	var w io.Writer = io.Discard
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		st.logFile = f
		w = f
	case toStderr:
		w = os.Stderr
	}
	st.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))

	ds, err := loadDataset(cfg.Directory.SeedFile)
	if err != nil {
		st.Close()
		return nil, err
	}

	st.db, err = store.Open(cfg.Directory.DBPath)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var base directory.Service
	switch cfg.Directory.Source {
	case "sqlite":
		seeded, err := st.db.SeedIfEmpty(ctx, ds)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("seeding directory: %w", err)
		}
		st.logger.Debug("sqlite directory", "seeded", seeded)
		base = st.db.Directory()
	default:
		base = directory.NewMemory(ds)
	}

	st.dir = base
	if ttl := cfg.CacheTTL(); ttl > 0 {
		st.dir = directory.NewCached(base, ttl)
	}

	st.synth = synth.New(st.dir, synth.Options{
		Org:          cfg.Org.Name,
		StepDuration: cfg.Timing.Step(),
	}, st.logger)
	return st, nil
}

func loadDataset(path string) (*directory.Dataset, error) {
	if path == "" {
		return directory.DefaultDataset()
	}
	ds, err := directory.LoadDatasetFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading seed file: %w", err)
	}
	return ds, nil
}

func (st *stack) sequencer(sched schedule.Scheduler, now func() time.Time) *sequencer.Sequencer {
	return sequencer.New(sequencer.Config{
		Responder: st.synth,
		Scheduler: sched,
		Timing: sequencer.Timing{
			ThinkingDelay:     st.cfg.Timing.ThinkingDelay(),
			AnswerBuffer:      st.cfg.Timing.AnswerBuffer(),
			ConfirmationDelay: st.cfg.Timing.ConfirmationDelay(),
			InsuranceDelay:    st.cfg.Timing.InsuranceDelay(),
		},
		Manager:  st.cfg.User.Manager,
		Recorder: st.db,
		Notifier: notify.NewDesktop(st.cfg.Notifications.Enabled, st.logger),
		Now:      now,
		NewID:    uuid.NewString,
		Logger:   st.logger,
	})
}

func (st *stack) Close() {
	if st.db != nil {
		st.db.Close()
	}
	if st.logFile != nil {
		st.logFile.Close()
	}
}

func employeeCandidate(e directory.Employee) match.Candidate {
	return match.Candidate{Employee: e, Tier: match.Exact, Token: e.FirstName()}
}
