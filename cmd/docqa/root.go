package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docqa/internal/rag/loaders"
	"docqa/internal/rag/session"
)

var (
	cfgPath string
	offline bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docqa",
		Short:         "Ask questions about your PDF documents",
		Long:          "docqa ingests PDF documents into a vector index and answers questions about them in the language they were asked.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (YAML)")
	root.PersistentFlags().BoolVar(&offline, "offline", false, "use the in-memory vector store instead of Milvus")

	root.AddCommand(newIngestCmd(), newAskCmd(), newChatCmd())
	return root
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file> [file...]",
		Short: "Index one or more documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfgPath, offline)
			if err != nil {
				return err
			}
			defer a.close()

			for _, path := range args {
				if err := ingestFile(ctx, a, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAskCmd() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfgPath, offline)
			if err != nil {
				return err
			}
			defer a.close()

			for _, path := range files {
				if err := ingestFile(ctx, a, path); err != nil {
					return err
				}
			}

			answer, err := a.orch.Answer(ctx, a.state, args[0])
			if err != nil {
				return err
			}
			fmt.Println(answer.Text)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "document to ingest before asking (repeatable)")
	return cmd
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question-answering session",
		Long: `Start an interactive session. Besides free-form questions, the
following commands are available:

  /ingest <file>   index a document
  /export <file>   write the session snapshot as JSON
  /clear           forget the conversation and ingested-document records
  /quit            leave the session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfgPath, offline)
			if err != nil {
				return err
			}
			defer a.close()
			return runChat(ctx, a)
		},
	}
}

func runChat(ctx context.Context, a *app) error {
	fmt.Printf("session %s — type /quit to leave\n", a.state.ID())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := runChatCommand(ctx, a, line)
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			if done {
				return nil
			}
			continue
		}

		answer, err := a.orch.Answer(ctx, a.state, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println(answer.Text)
	}
}

// runChatCommand handles a /-prefixed REPL command. It returns true when
// the session should end.
func runChatCommand(ctx context.Context, a *app, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/clear":
		a.orch.ClearMemory(a.state)
		fmt.Println("session memory cleared")
		return false, nil
	case "/ingest":
		if arg == "" {
			return false, fmt.Errorf("usage: /ingest <file>")
		}
		return false, ingestFile(ctx, a, arg)
	case "/export":
		if arg == "" {
			return false, fmt.Errorf("usage: /export <file>")
		}
		return false, exportSession(a, arg)
	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
}

func ingestFile(ctx context.Context, a *app, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	report, err := a.orch.Ingest(ctx, a.state, data, name, loaders.ForFile(name))
	if err != nil {
		return err
	}

	if report.AlreadyProcessed {
		fmt.Printf("%s: already indexed in this session, skipped\n", report.DisplayName)
		return nil
	}
	fmt.Printf("%s: indexed %d chunks into %s\n", report.DisplayName, report.ChunkCount, report.Collection)
	return nil
}

func exportSession(a *app, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = a.state.Export(f, session.ExportConfig{
		EmbeddingModel: a.cfg.Embedding.Model,
		Dimensions:     a.cfg.Embedding.Dimensions,
	})
	if err != nil {
		return err
	}
	fmt.Printf("session exported to %s\n", path)
	return nil
}
