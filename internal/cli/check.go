package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/darkit/refurbish"
	"github.com/darkit/refurbish/internal/logging"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func (a *app) newCheckCmd() *cobra.Command {
	var (
		format    string
		factsFile string
		saveFacts string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Assess whether this machine is refurbished",
		Long: `Collect hardware facts from the local machine (or load them from a file)
and print the refurbishment report.

Example:
  refurbcheck check
  refurbcheck check --format json
  refurbcheck check --facts facts.json --profile apple`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatText && format != formatJSON {
				return fmt.Errorf("invalid --format %q (want text or json)", format)
			}

			runID := uuid.NewString()
			logger := logging.New("check").With("run_id", runID)

			profile, err := a.cfg.ResolveProfile(a.platform.Profile())
			if err != nil {
				return err
			}

			var facts refurbish.Facts
			if factsFile != "" {
				if facts, err = readFacts(factsFile); err != nil {
					return err
				}
				logger.Debug("facts loaded", "file", factsFile)
			} else {
				var probeErr error
				facts, probeErr = a.collector(runID).Collect(cmd.Context())
				if probeErr != nil {
					// 部分探针失败只意味着事实缺失
					logger.Debug("some probes failed", "error", probeErr)
				}
			}
			if saveFacts != "" {
				if err := writeJSONFile(saveFacts, facts); err != nil {
					return err
				}
			}

			engine := refurbish.NewEngine(profile,
				refurbish.WithLogger(logging.New("engine").With("run_id", runID)))
			report := engine.Assess(facts)
			logger.Info("assessment complete",
				"profile", profile.Name,
				"platform", a.platform.Name(),
				"is_refurbished", report.IsRefurbished,
				"confidence", report.Confidence,
				"indicators", len(report.Indicators),
			)

			out := cmd.OutOrStdout()
			if format == formatJSON {
				return writeJSON(out, report)
			}
			writeReportText(out, report, profile.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or json")
	cmd.Flags().StringVar(&factsFile, "facts", "", "assess facts from a JSON file instead of probing this machine")
	cmd.Flags().StringVar(&saveFacts, "save-facts", "", "write the collected facts to a JSON file")
	cmd.Flags().String("profile", "", "vendor profile (default: chosen from the platform)")
	addProbeFlags(cmd)
	return cmd
}

func (a *app) newFactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Print the raw facts collected from this machine as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runID := uuid.NewString()
			facts, err := a.collector(runID).Collect(cmd.Context())
			if err != nil {
				logging.New("facts").Debug("some probes failed", "run_id", runID, "error", err)
			}
			return writeJSON(cmd.OutOrStdout(), facts)
		},
	}
	addProbeFlags(cmd)
	return cmd
}

func (a *app) newTelemetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Print battery and storage health as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := a.collector(uuid.NewString()).Telemetry(cmd.Context())
			return writeJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().Duration("timeout", 0, "probe timeout (default from config, 10s)")
	return cmd
}

func addProbeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, "maximum concurrent probes (default from config, 4)")
	cmd.Flags().Duration("timeout", 0, "per-probe timeout (default from config, 10s)")
}

func readFacts(path string) (refurbish.Facts, error) {
	var facts refurbish.Facts
	data, err := os.ReadFile(path)
	if err != nil {
		return facts, fmt.Errorf("read facts: %w", err)
	}
	if err := json.Unmarshal(data, &facts); err != nil {
		return facts, fmt.Errorf("parse facts %s: %w", path, err)
	}
	return facts, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	var b strings.Builder
	if err := writeJSON(&b, v); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
