// Command admin runs one-off operations against the record store:
//
//	admin process -record recXXXX       evaluate one record now
//	admin pending                       evaluate the pending batch once
//	admin upsert -record recXXXX -response saved.txt [-name "Startup"]
//	admin latest -record recXXXX        print the last mirrored run
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/repo/postgres"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/app"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "admin:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: admin <process|pending|upsert|latest> [flags]")
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("%w: missing command", domain.ErrInvalidArgument)
	}
	cmd := args[0]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)
	recordID := fs.String("record", "", "record id")
	responsePath := fs.String("response", "", "saved model response file (upsert)")
	name := fs.String("name", "", "startup name (upsert)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	switch cmd {
	case "process", "pending", "upsert", "latest":
	default:
		usage(out)
		return fmt.Errorf("%w: unknown command %q", domain.ErrInvalidArgument, cmd)
	}
	if cmd != "pending" && *recordID == "" {
		return fmt.Errorf("%w: -record is required", domain.ErrInvalidArgument)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	comps, err := app.BuildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	switch cmd {
	case "process":
		outcome, err := comps.Pipeline.ProcessRecord(ctx, *recordID)
		if err != nil {
			return err
		}
		return printJSON(out, map[string]any{"record_id": outcome.RecordID, "status": outcome.Status, "note": outcome.Note})
	case "pending":
		report, err := comps.Pipeline.ProcessPending(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, report)
	case "upsert":
		if *responsePath == "" {
			return fmt.Errorf("%w: -response is required", domain.ErrInvalidArgument)
		}
		raw, err := os.ReadFile(*responsePath)
		if err != nil {
			return err
		}
		result, err := comps.Pipeline.Writer.ImportResponse(ctx, comps.Pipeline.Parser, *recordID, *name, string(raw))
		if err != nil {
			return err
		}
		return printJSON(out, map[string]any{"record_id": *recordID, "overall_score": result.OverallScore, "warnings": result.Warnings})
	default:
		if comps.Pool == nil {
			return errors.New("latest needs DB_URL")
		}
		latest, err := postgres.NewEvaluationRepo(comps.Pool).GetLatest(ctx, *recordID)
		if err != nil {
			return err
		}
		return printJSON(out, latest)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
