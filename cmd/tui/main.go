package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"ctabot-go/internal/config"
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	path := config.Path("")

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== CTA Bot Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit risk knobs")
		fmt.Println("3) Edit a strategy")
		fmt.Println("4) Edit market data feed")
		fmt.Println("5) Save config")
		fmt.Println("6) Launch paper bot")
		fmt.Println("7) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editRisk(reader, cfg)
		case "3":
			editStrategy(reader, cfg)
		case "4":
			editFeed(reader, cfg)
		case "5":
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "not saved: %v\n", err)
			} else if err := config.Save(path, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "6":
			launchPaper(reader, path)
		case "7":
			reloaded, err := config.Load(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Feed: %s %s\n", cfg.Exchange.Provider, strings.Join(cfg.Symbols(), ", "))
	fmt.Printf("Per-trade notional cap: %.2f\n", cfg.Risk.MaxNotionalPerTrade)
	fmt.Printf("Order rate: %.2f/s (burst %d)\n", cfg.Risk.MaxOrdersPerSec, cfg.Risk.OrderBurst)
	fmt.Printf("History: %s | fills: %s\n", cfg.History.Path, cfg.Paper.FillsPath)
	for i, s := range cfg.Strategies {
		p := s.Params
		fmt.Printf("%d) %s [%s] %s fastK=%.2f slowK=%.2f initDays=%d volume=%.2f chase=%.2f tp=%.2f sl=%.2f\n",
			i+1, s.Name, s.Mode, s.Symbol, p.FastK, p.SlowK, p.InitDays, p.Volume, p.ChaseOffset, p.TakeProfitPoint, p.StopLossPoint)
	}
}

func editRisk(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Risk ---")
	cfg.Risk.MaxNotionalPerTrade = promptFloat(reader, "Max notional per trade (0 = off)", cfg.Risk.MaxNotionalPerTrade)
	cfg.Risk.MaxOrdersPerSec = promptFloat(reader, "Max orders per second (0 = off)", cfg.Risk.MaxOrdersPerSec)
	cfg.Risk.OrderBurst = int(promptFloat(reader, "Order burst", float64(cfg.Risk.OrderBurst)))
}

func editStrategy(reader *bufio.Reader, cfg *config.Config) {
	if len(cfg.Strategies) == 0 {
		fmt.Println("no strategies configured")
		return
	}
	printSummary(cfg)
	idx := int(promptFloat(reader, "Strategy number", 1)) - 1
	if idx < 0 || idx >= len(cfg.Strategies) {
		fmt.Println("no such strategy")
		return
	}
	s := &cfg.Strategies[idx]
	fmt.Printf("\n--- Edit %s ---\n", s.Name)
	s.Mode = promptString(reader, "Mode (double_ema|order_chase|chasing_tick)", s.Mode)
	s.Symbol = promptString(reader, "Symbol", s.Symbol)
	p := &s.Params
	p.FastK = promptFloat(reader, "Fast EMA k", p.FastK)
	p.SlowK = promptFloat(reader, "Slow EMA k", p.SlowK)
	p.InitDays = int(promptFloat(reader, "Warm-up days", float64(p.InitDays)))
	p.Volume = promptFloat(reader, "Order volume", p.Volume)
	p.ChaseOffset = promptFloat(reader, "Chase offset", p.ChaseOffset)
	p.TakeProfitPoint = promptFloat(reader, "Take-profit points", p.TakeProfitPoint)
	p.StopLossPoint = promptFloat(reader, "Stop-loss points", p.StopLossPoint)
}

func editFeed(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Feed ---")
	cfg.Exchange.Provider = promptString(reader, "Provider (stub|binance|file)", cfg.Exchange.Provider)
	if strings.EqualFold(cfg.Exchange.Provider, "file") {
		cfg.Exchange.TicksFile = promptString(reader, "Ticks file", cfg.Exchange.TicksFile)
	}
}

func launchPaper(reader *bufio.Reader, path string) {
	fmt.Println("Launching paper bot (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/paper", path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start bot: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Print("\nPress ENTER to stop the bot and return to menu...")
	_, _ = reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	if line = strings.TrimSpace(line); line == "" {
		return current
	}
	return line
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}
