package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/magda-reaper-mcp/agents/intent"
	"github.com/Conceptual-Machines/magda-reaper-mcp/bridge"
	"github.com/Conceptual-Machines/magda-reaper-mcp/config"
	"github.com/Conceptual-Machines/magda-reaper-mcp/llm"
	"github.com/Conceptual-Machines/magda-reaper-mcp/lookup"
	"github.com/Conceptual-Machines/magda-reaper-mcp/tools"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

const serverInstructions = `Tools for driving REAPER.
Backing tracks: generate_backing_track looks a song up online; manual_chart takes pasted chords.
Sessions: setup_session picks a template from a description.
Track, item, FX and marker indexes are 0-based.`

var httpAddr string

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8080)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long:  `Run the MCP server over stdio, or over streamable HTTP with --http.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd)
	},
}

func serve(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Release:          serverName + "@" + serverVersion,
		}); err != nil {
			log.Printf("⚠️  Sentry initialization failed: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
			log.Printf("📡 Sentry initialized")
		}
	}

	reaper, err := bridge.NewFileBridge(cfg)
	if err != nil {
		return err
	}

	agent, err := newIntentAgent(cmd, cfg)
	if err != nil {
		return err
	}

	toolbox, err := tools.NewToolbox(reaper, lookup.NewClient(cfg),
		tools.WithIntentAgent(agent),
		tools.WithExportDir(cfg.ExportDir),
	)
	if err != nil {
		return err
	}

	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)
	toolbox.Register(s)

	addr := httpAddr
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	if addr == "" {
		log.Printf("🚀 SERVING MCP over stdio (bridge: %s)", reaper.Dir())
		return server.ServeStdio(s)
	}
	return serveHTTP(s, addr)
}

// newIntentAgent builds the natural language resolver, with an LLM fallback when a key is configured
func newIntentAgent(cmd *cobra.Command, cfg *config.Config) (*intent.Agent, error) {
	if !cfg.HasLLM() {
		return intent.NewAgent(nil, ""), nil
	}
	provider, err := llm.NewProviderFactoryFromConfig(cfg).GetProvider(cmd.Context(), cfg.IntentModel, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create intent provider: %w", err)
	}
	return intent.NewAgent(provider, cfg.IntentModel), nil
}

func serveHTTP(s *server.MCPServer, addr string) error {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.PathPrefix("/mcp").Handler(server.NewStreamableHTTPServer(s))

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
	}).Handler(router)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("🚀 SERVING MCP over HTTP on %s/mcp", addr)
	return srv.ListenAndServe()
}
