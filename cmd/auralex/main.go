// Command auralex turns an audio recording into study material. It prints
// the result as JSON, or serves the same capability as MCP tools over stdio.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Nephrolytics-ai/auralex/pkg/config"
	"github.com/Nephrolytics-ai/auralex/pkg/library"
	"github.com/Nephrolytics-ai/auralex/pkg/llms/gemini"
	"github.com/Nephrolytics-ai/auralex/pkg/logging"
	mcpserver "github.com/Nephrolytics-ai/auralex/pkg/mcp"
	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/pipeline"
)

type sectionFlags struct {
	noTakeaways bool
	noArguments bool
	noExamples  bool
	noNotes     bool
	noQuiz      bool
}

func (f sectionFlags) options() model.ProcessingOptions {
	return model.ProcessingOptions{
		KeyTakeaways:  !f.noTakeaways,
		CoreArguments: !f.noArguments,
		Examples:      !f.noExamples,
		DeepDiveNotes: !f.noNotes,
		Quiz:          !f.noQuiz,
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to an optional YAML configuration file")
	envFile := flag.String("env", ".env", "path to an optional .env file")
	outPath := flag.String("out", "", "write the JSON result to this file instead of stdout")
	save := flag.Bool("save", false, "save the result to the library")
	mimeType := flag.String("mime", "", "audio media type; inferred from the file extension when empty")
	serveMCP := flag.Bool("mcp", false, "serve MCP tools over stdio instead of processing a file")

	var sections sectionFlags
	flag.BoolVar(&sections.noTakeaways, "no-takeaways", false, "omit key takeaways")
	flag.BoolVar(&sections.noArguments, "no-arguments", false, "omit core arguments")
	flag.BoolVar(&sections.noExamples, "no-examples", false, "omit real-world examples")
	flag.BoolVar(&sections.noNotes, "no-notes", false, "omit deep dive notes")
	flag.BoolVar(&sections.noQuiz, "no-quiz", false, "omit the quiz")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: auralex [flags] <audio-file>\n       auralex -mcp [flags]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
		return 1
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
		return 1
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
		return 1
	}
	if cfg.Gemini.APIKey == "" {
		fmt.Fprintf(os.Stderr, "auralex: %s is not set\n", config.EnvGeminiKey)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logging.NewLogger(ctx)

	service, err := gemini.NewService(ctx, cfg.GeneratorOptions()...)
	if err != nil {
		log.Errorf("error: %v", err)
		return 1
	}
	p, err := pipeline.New(service, service, cfg.GeneratorOptions()...)
	if err != nil {
		log.Errorf("error: %v", err)
		return 1
	}

	var store *library.Store
	if *save || *serveMCP {
		store, err = library.NewStore(cfg.Library.Dir)
		if err != nil {
			log.Errorf("error: %v", err)
			return 1
		}
	}

	if *serveMCP {
		return serve(p, store)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	return processFile(ctx, p, store, flag.Arg(0), *mimeType, sections.options(), *outPath)
}

func serve(p *pipeline.Pipeline, store *library.Store) int {
	var lib mcpserver.Library
	if store != nil {
		lib = store
	}
	srv, err := mcpserver.NewServer(p, lib, gemini.LoadAudioFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
		return 1
	}
	if err := srv.ServeStdio(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
		return 1
	}
	return 0
}

func processFile(
	ctx context.Context,
	p *pipeline.Pipeline,
	store *library.Store,
	path string,
	mimeType string,
	options model.ProcessingOptions,
	outPath string,
) int {
	payload, err := gemini.LoadAudioFile(ctx, path, mimeType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
		return 1
	}

	content, err := p.Process(ctx, payload, options)
	if err != nil {
		// Only the classified message is shown; details are in the log.
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	out := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if store != nil {
		entry, err := store.Save(ctx, content, payload.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "saved %s to %s\n", entry.ID, store.Dir())
		err = library.Export(entry, out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeJSON(out, content); err != nil {
		fmt.Fprintf(os.Stderr, "auralex: %v\n", err)
		return 1
	}
	return 0
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
