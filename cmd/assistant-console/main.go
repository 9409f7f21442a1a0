// cmd/assistant-console/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/config"
	stderrors "github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/errors"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/logger"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/observability"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/render"

	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/controllers/chat"
	classifychange "github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/controllers/classify-change"
)

func main() {
	configFile := flag.String("config", "", "path to a config file, overrides the default search path")
	changeFile := flag.String("change", "", "path to a JSON file with change fields to classify on startup")
	changeID := flag.String("change-id", "", "infrastructure change identifier for the submitted change")
	flag.Parse()

	zapLog := logger.New(logger.Options{Level: "info", Format: "console"})

	zapLog.Info("Starting assistant console...")

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFromFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger per the loaded logging config.
	zapLog = logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Build rendering regions ---
	resultsRegion := render.NewBuffer()
	chatRegion := render.NewBuffer()
	plansRegion := render.NewBuffer()

	// --- Chat controller ---
	chatCfg := config.GetControllerConfig(cfg, chat.ControllerName)
	chatCtrl, err := chat.NewController(&chat.Config{
		ChatURL:    cfg.Backend.ChatURL(),
		StatusURL:  cfg.Backend.StatusURL(),
		Timeout:    config.GetDuration(chatCfg.Timeout),
		MaxRetries: chatCfg.MaxRetries,
		MockMode:   cfg.Chat.MockMode,
	}, chatRegion, plansRegion, obs, &chatLoggerAdapter{log})
	if err != nil {
		zapLog.Fatal("failed to create chat controller", zap.Error(err))
	}

	// --- Classification controller, handing predictions to the chat ---
	var classifyCtrl *classifychange.Controller
	if config.IsControllerEnabled(cfg, classifychange.ControllerName) {
		classifyCfg := config.GetControllerConfig(cfg, classifychange.ControllerName)
		classifyCtrl = classifychange.NewController(&classifychange.Config{
			ClassifyURL: cfg.Backend.ClassifyURL(),
			Timeout:     config.GetDuration(classifyCfg.Timeout),
			MaxRetries:  classifyCfg.MaxRetries,
		}, resultsRegion, chatCtrl, obs, &classifyChangeLoggerAdapter{log})
	} else {
		zapLog.Warn("classification controller disabled by config")
	}

	// --- Metrics Server ---
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			mux.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Backend status probe ---
	report := chatCtrl.CheckStatus(ctx)
	fmt.Printf("Backend status: %s", report.Status)
	if report.Message != "" {
		fmt.Printf(" (%s)", report.Message)
	}
	fmt.Println()

	// --- Optional startup classification ---
	if *changeFile != "" && classifyCtrl != nil {
		if err := classifyFromFile(ctx, classifyCtrl, resultsRegion, *changeFile, *changeID); err != nil {
			zapLog.Error("startup classification failed", zap.Error(err))
		}
		printRegion("Chat", chatRegion)
		printRegion("Plans", plansRegion)
	}

	// --- Interactive chat loop ---
	fmt.Println(`Type a message for the assistant ("exit" to quit):`)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		if err := chatCtrl.Send(ctx, line); err != nil {
			zapLog.Warn("chat turn failed", zap.Error(err))
			if stderrors.IsRetryable(err) {
				fmt.Println("The last message was not delivered; you can try it again.")
			}
		}
		printRegion("Chat", chatRegion)
		printRegion("Plans", plansRegion)
	}

	zapLog.Info("Assistant console stopped")
}

// classifyFromFile reads raw change fields from a JSON file and submits them.
func classifyFromFile(ctx context.Context, ctrl *classifychange.Controller, results *render.Buffer, path, changeID string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read change file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse change file: %w", err)
	}

	if changeID == "" {
		changeID = raw["infrastructure_change_id"]
	}

	result, err := ctrl.Submit(ctx, changeID, raw)
	printRegion("Results", results)
	if err != nil {
		return err
	}

	if result.HasPrediction() {
		fmt.Printf("Predicted label: %s\n", *result.PredictedLabel)
	}
	return nil
}

func printRegion(name string, region *render.Buffer) {
	content := region.Content()
	if content == "" {
		return
	}
	fmt.Printf("--- %s ---\n%s\n", name, content)
}

// Logger adapters for controllers that have their own Logger interfaces
type classifyChangeLoggerAdapter struct {
	logger.Logger
}

func (a *classifyChangeLoggerAdapter) With(fields map[string]interface{}) classifychange.Logger {
	return &classifyChangeLoggerAdapter{a.Logger.With(fields)}
}

type chatLoggerAdapter struct {
	logger.Logger
}

func (a *chatLoggerAdapter) With(fields map[string]interface{}) chat.Logger {
	return &chatLoggerAdapter{a.Logger.With(fields)}
}
