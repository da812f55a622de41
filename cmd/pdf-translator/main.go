package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"pdf-translator/internal/cache"
	"pdf-translator/internal/config"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/ocr"
	"pdf-translator/internal/pipeline"
	"pdf-translator/internal/render"
	"pdf-translator/internal/source"
	"pdf-translator/internal/translate"
	"pdf-translator/internal/types"
)

// Command line flags
var (
	outputFlag      = flag.String("o", "", "output PDF path (default: next to the input, named after the target language)")
	configFlag      = flag.String("config", "", "config file path")
	sourceFlag      = flag.String("source", "", "source language, BCP-47 tag or English name (overrides config)")
	targetFlag      = flag.String("target", "", "target language (overrides config)")
	ocrModelFlag    = flag.String("ocr-model", "", "OCR model name (overrides config)")
	chatModelFlag   = flag.String("chat-model", "", "translation model name (overrides config)")
	concurrencyFlag = flag.Int("concurrency", 0, "pages translated in parallel (overrides config)")
	chromiumFlag    = flag.String("chromium", "", "Chromium or Chrome binary path (default: auto-detect)")
	fontFlag        = flag.String("font", "", "font file embedded in the output PDF (overrides config)")
	cacheFlag       = flag.String("cache", "", "translation cache file, reused across runs (overrides config)")
	skipCheckFlag   = flag.Bool("skip-key-check", false, "skip the API key validation request")
	verboseFlag     = flag.Bool("v", false, "verbose logging to the console")
)

// printHelp displays the help information for command line usage.
func printHelp() {
	fmt.Println("pdf-translator - translate a PDF document and render the result as a new PDF")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pdf-translator [options] <input.pdf>")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("The Mistral API key is read from the config file or the MISTRAL_API_KEY")
	fmt.Println("environment variable. Rendering requires a Chromium or Chrome binary.")
}

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if flag.NArg() != 1 {
		printHelp()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	logConfig := logger.DefaultConfig()
	if *verboseFlag {
		logConfig.Level = logger.LevelDebug
		logConfig.EnableConsole = true
	}
	if err := logger.Init(logConfig); err != nil {
		// Keep going with the no-op logger, the run itself can still work.
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize log file: %v\n", err)
	}
	defer logger.Close()

	configMgr, err := config.NewConfigManager(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := configMgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(configMgr)

	apiKey := configMgr.GetAPIKey()
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: Mistral API key not configured")
		fmt.Fprintf(os.Stderr, "Set the %s environment variable or add mistral_api_key to %s\n",
			config.EnvMistralAPIKey, configMgr.GetConfigPath())
		os.Exit(1)
	}

	// Cancel the run on Ctrl-C so no partial output is left behind.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ocrClient := ocr.NewClient(apiKey, configMgr.GetBaseURL(), configMgr.GetOCRModel())

	if !*skipCheckFlag {
		checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		err := ocrClient.ValidateKey(checkCtx)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: API key validation failed: %v\n", err)
			os.Exit(1)
		}
	}

	requestTimeout := time.Duration(configMgr.GetRequestTimeout()) * time.Second
	chatModel, err := translate.NewMistralChatModel(ctx, apiKey, configMgr.GetBaseURL(), configMgr.GetChatModel(), requestTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	engine := translate.NewEngine(chatModel, configMgr.GetSourceLanguage(), configMgr.GetTargetLanguage(), configMgr.GetConcurrency())

	var translationCache *cache.Cache
	if cachePath := configMgr.GetCachePath(); cachePath != "" {
		translationCache = cache.New(cachePath)
		if err := translationCache.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		engine.SetCache(translationCache)
	}

	renderer := render.NewChromiumRenderer(configMgr.GetChromiumPath(), 0)
	if renderer.Binary() == "" {
		fmt.Fprintln(os.Stderr, "Error: no Chromium or Chrome binary found")
		fmt.Fprintln(os.Stderr, "Install Chromium or pass its path with -chromium")
		os.Exit(1)
	}

	p := pipeline.NewPipeline(pipeline.InspectorFunc(source.Inspect), ocrClient, engine, renderer)
	if fontPath := configMgr.GetFontPath(); fontPath != "" {
		p.SetFontPath(fontPath)
	}
	if workDir := configMgr.GetWorkDirectory(); workDir != "" {
		p.SetWorkDirectory(workDir)
	}

	outputPath := *outputFlag
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, engine.TargetLanguage())
	}

	fmt.Printf("Input:  %s\n", inputPath)
	fmt.Printf("Output: %s\n", outputPath)
	fmt.Printf("API:    %s\n", configMgr.GetBaseURL())
	fmt.Printf("Models: %s / %s\n", configMgr.GetOCRModel(), configMgr.GetChatModel())
	fmt.Printf("Langs:  %s -> %s\n", engine.SourceLanguage(), engine.TargetLanguage())
	if translationCache != nil {
		fmt.Printf("Cache:  %s (%d entries)\n", translationCache.Path(), translationCache.Size())
	}
	fmt.Println()

	p.SetStatusCallback(func(status *types.Status) {
		if status.Phase == types.PhaseError {
			return
		}
		fmt.Printf("\r[%3d%%] %-40s", status.Progress, status.Message)
	})

	result, err := p.Run(ctx, inputPath, outputPath)
	fmt.Println()

	// Pages that finished before a failure stay cached.
	if translationCache != nil {
		if saveErr := translationCache.Save(); saveErr != nil {
			logger.Warn("failed to save translation cache", logger.Err(saveErr))
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=== Translation Complete ===")
	fmt.Printf("Pages:    %d\n", result.PageCount)
	if result.Warnings > 0 {
		fmt.Printf("Warnings: %d (details in the log)\n", result.Warnings)
	}
	fmt.Printf("Output:   %s\n", result.OutputPDFPath)
}

// applyFlagOverrides folds command line overrides into the loaded
// configuration for this run only, nothing is saved back.
func applyFlagOverrides(configMgr *config.ConfigManager) {
	cfg := configMgr.GetConfig()
	if *sourceFlag != "" {
		cfg.SourceLanguage = *sourceFlag
	}
	if *targetFlag != "" {
		cfg.TargetLanguage = *targetFlag
	}
	if *ocrModelFlag != "" {
		cfg.OCRModel = *ocrModelFlag
	}
	if *chatModelFlag != "" {
		cfg.ChatModel = *chatModelFlag
	}
	if *concurrencyFlag > 0 {
		cfg.Concurrency = *concurrencyFlag
	}
	if *chromiumFlag != "" {
		cfg.ChromiumPath = *chromiumFlag
	}
	if *fontFlag != "" {
		cfg.FontPath = *fontFlag
	}
	if *cacheFlag != "" {
		cfg.CachePath = *cacheFlag
	}
}

// defaultOutputPath places the translated PDF next to the input, naming it
// after the target language ("paper_english.pdf" for an English run).
func defaultOutputPath(inputPath, targetLanguage string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	suffix := strings.ReplaceAll(strings.ToLower(targetLanguage), " ", "_")
	if suffix == "" {
		suffix = "translated"
	}
	return filepath.Join(filepath.Dir(inputPath), stem+"_"+suffix+".pdf")
}
