package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mensylisir/tapsmith/common"
	"github.com/mensylisir/tapsmith/config"
	"github.com/mensylisir/tapsmith/executor"
	"github.com/mensylisir/tapsmith/inputs"
	"github.com/mensylisir/tapsmith/logger"
	"github.com/mensylisir/tapsmith/runner"
	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/state"
	"github.com/mensylisir/tapsmith/step/tap"
	"github.com/mensylisir/tapsmith/util"
)

type cliOptions struct {
	dryRun bool
	resume string

	owner       string
	tap         string
	repoName    string
	visibility  string
	branch      string
	formulaMode string
	formulaURL  string
	formulaName string

	configPath string
	stateDir   string
	logDir     string
	logLevel   string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Log.WithField(common.LogFieldApp, common.AppName).Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           common.AppName,
		Short:         "Homebrew tap setup helper",
		Long:          "Provisions a Homebrew tap end to end: local tap checkout, GitHub repo,\nfirst formula, push and registration. Every run is persisted and can be\nresumed by id after a failure or a dry run.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)
			}
			return logger.InitGlobalLogger(opts.logDir, opts.verbose, level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print actions without applying them")
	flags.StringVar(&opts.resume, "resume", "", "Resume a previous run by ID")
	flags.StringVar(&opts.owner, "owner", "", "GitHub owner or org for the tap repo")
	flags.StringVar(&opts.tap, "tap", "", "Tap short name (without the homebrew- prefix)")
	flags.StringVar(&opts.repoName, "repo-name", "", "Override repo name (defaults to homebrew-<tap>)")
	flags.StringVar(&opts.visibility, "visibility", "", "Repo visibility: public or private (default public)")
	flags.StringVar(&opts.branch, "branch", "", "Branch to push (default main)")
	flags.StringVar(&opts.formulaMode, "formula-mode", "", "How the first formula is added: stub or brew-create (default stub)")
	flags.StringVar(&opts.formulaURL, "formula-url", "", "Source URL for brew create (required for brew-create mode)")
	flags.StringVar(&opts.formulaName, "formula-name", "", "Formula name to use with brew create (optional)")
	flags.StringVar(&opts.configPath, "config", "", "YAML file with tap inputs; flags take precedence")

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&opts.stateDir, "state-dir", "", "Directory holding run state (default: user config dir)")
	persistent.StringVar(&opts.logDir, "log-dir", "", "Directory for log files; console logging when unset")
	persistent.StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	persistent.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newStateCmd(opts))
	return cmd
}

func openStore(stateDir string) (*state.Store, error) {
	dir := stateDir
	if dir == "" {
		var err error
		if dir, err = state.DefaultBaseDir(); err != nil {
			return nil, err
		}
	}
	return state.NewStore(dir)
}

// buildInputs merges an optional config file under the command-line flags,
// applies the defaults and validates the result.
func buildInputs(opts *cliOptions) (inputs.Inputs, error) {
	merged := config.FileConfig{
		Owner:       opts.owner,
		Tap:         opts.tap,
		RepoName:    opts.repoName,
		Visibility:  opts.visibility,
		Branch:      opts.branch,
		FormulaMode: opts.formulaMode,
		FormulaURL:  opts.formulaURL,
		FormulaName: opts.formulaName,
	}

	if opts.configPath != "" {
		fileCfg, err := config.NewLoader(opts.configPath).Load()
		if err != nil {
			return inputs.Inputs{}, err
		}
		merged = fileCfg.Overlay(merged)
	}

	if merged.Owner == "" {
		return inputs.Inputs{}, fmt.Errorf("--owner is required (flag or config file)")
	}
	if merged.Tap == "" {
		return inputs.Inputs{}, fmt.Errorf("--tap is required (flag or config file)")
	}

	visibility, err := inputs.ParseVisibility(util.FirstNonEmpty(merged.Visibility, string(inputs.VisibilityPublic)))
	if err != nil {
		return inputs.Inputs{}, err
	}
	mode, err := inputs.ParseFormulaMode(util.FirstNonEmpty(merged.FormulaMode, string(inputs.FormulaModeStub)))
	if err != nil {
		return inputs.Inputs{}, err
	}
	branch := util.FirstNonEmpty(merged.Branch, "main")

	return inputs.New(merged.Owner, merged.Tap, merged.RepoName, visibility, branch, mode, merged.FormulaURL, merged.FormulaName)
}

func runWorkflow(cmd *cobra.Command, opts *cliOptions) error {
	store, err := openStore(opts.stateDir)
	if err != nil {
		return err
	}
	exec := executor.NewLocalExecutor()

	var rc *runtime.RunContext
	if opts.resume != "" {
		if rc, err = runtime.Load(store, exec, opts.resume, opts.dryRun); err != nil {
			return err
		}
		logger.Log.WithField(common.LogFieldRun, rc.RunID).Info("Resuming run")
	} else {
		in, err := buildInputs(opts)
		if err != nil {
			return err
		}
		if rc, err = runtime.New(store, exec, opts.dryRun, in); err != nil {
			return err
		}
		logger.Log.WithField(common.LogFieldRun, rc.RunID).Info("Starting new run")
	}

	return runner.New(tap.Workflow()...).Run(cmd.Context(), rc)
}

func newStateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state <run-id>",
		Short: "Print the persisted state of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts.stateDir)
			if err != nil {
				return err
			}
			runID := args[0]

			// ReadState validates the snapshot and turns a missing or
			// corrupt document into a typed error before anything prints.
			if _, err := store.ReadState(runID); err != nil {
				return err
			}
			raw, err := os.ReadFile(store.StatePath(runID))
			if err != nil {
				return err
			}

			fmt.Println(store.StatePath(runID))
			fmt.Println(string(raw))
			return nil
		},
	}
}
