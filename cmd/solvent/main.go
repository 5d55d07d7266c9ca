package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nkapur/solvent/internal/gateway"
	"github.com/nkapur/solvent/internal/governance"
	"github.com/nkapur/solvent/internal/observability"
	"github.com/nkapur/solvent/internal/provider"
	"github.com/nkapur/solvent/internal/solver"
	"github.com/nkapur/solvent/internal/store"
	"github.com/nkapur/solvent/pkg/config"
)

func main() {
	observability.PrintBanner()

	// Route all log output through the terminal mutex so it never
	// tears a banner write mid-line.
	log.SetOutput(observability.NewTermWriter())

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	// Initialize LLM (using default enabled provider). A missing
	// credential must stop us here, before any phase can run.
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	llm, err := provider.NewModel(pName, pCfg)
	if err != nil {
		log.Fatal(err)
	}

	solves, err := store.NewSolveStore(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer solves.Close()

	pol := governance.NewDefaultPolicyEngine()
	// Default rules: keep prompt-injection attempts out of the pipeline
	_ = pol.DenyPattern(`(?i)ignore (all )?previous instructions`)
	_ = pol.DenyPattern(`(?i)reveal .*system prompt`)

	logger := observability.NewLogger()
	prompts := solver.NewPromptManager(cfg.App.PromptsDir)
	slv := solver.New(solver.NewModelGateway(llm), prompts, logger)

	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		runTelegram(tgCfg, slv, pol, solves, logger, cfg.SolverMaxRetries())
		return
	}

	runInteractive(slv, pol, solves, logger, cfg.SolverMaxRetries())
}

func runInteractive(slv *solver.Solver, pol governance.PolicyEngine, solves *store.SolveStore, logger *observability.Logger, maxRetries int) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Print("Enter your question: ")
	for scanner.Scan() {
		question := scanner.Text()

		verdict, err := pol.Evaluate(ctx, governance.Request{Question: question, Source: "cli"})
		if err != nil {
			log.Fatal(err)
		}
		if verdict.Effect == governance.EffectDeny {
			logger.LogPolicyCheck("cli", string(verdict.Effect), verdict.Reason)
			fmt.Printf("Rejected: %s\n", verdict.Reason)
			fmt.Print("Enter your question: ")
			continue
		}

		result, err := slv.Solve(ctx, question, maxRetries)
		if err != nil {
			log.Fatal(err)
		}

		if err := solves.RecordSolve("cli", question, result); err != nil {
			log.Printf("Warning: Failed to record solve: %v", err)
		}

		pretty, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(pretty))
		fmt.Print("Enter your question: ")
	}
}

func runTelegram(tgCfg config.GatewayConfig, slv *solver.Solver, pol governance.PolicyEngine, solves *store.SolveStore, logger *observability.Logger, maxRetries int) {
	token := tgCfg.ResolveToken()
	if token == "" {
		log.Fatal("Telegram gateway is enabled but no token is configured")
	}

	tg, err := gateway.NewTelegramGateway(token, slv, pol, solves, maxRetries)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
				phase, query, _ := observability.GetStatus()
				if phase != observability.PhaseIdle {
					log.Printf("[Status] %s: %s", phase, query)
				}
			}
		}
	}()

	go func() {
		if err := tg.Start(); err != nil {
			log.Printf("GATEWAY CRITICAL ERROR: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	tg.Stop()
}
