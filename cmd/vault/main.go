// vault 在記憶體內的密碼管理器上執行指令腳本
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipvault/config"
	"github.com/Hakuto4838/skipvault/logutil"
	"github.com/Hakuto4838/skipvault/vault"
)

type options struct {
	configPath string
	json       bool
	strict     bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "vault",
		Short:         "In-memory password manager backed by a skip list",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "TOML config file")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print results as JSON lines")
	root.AddCommand(runCommand(opts))
	return root
}

func runCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Execute a command script against a fresh store",
		Long: "Execute a line-oriented script. Commands: adduser, deluser, auth, authapp, " +
			"reset, resetapp, addapp, users, stats. Use - to read from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open script")
				}
				defer f.Close()
				in = f
			}
			return run(opts, in, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error when any command fails")
	return cmd
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(opts *options, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := logutil.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m, err := vault.NewManager(cfg.Store, logger)
	if err != nil {
		return err
	}
	results, err := runScript(m, in)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}
	logger.Info("script finished", zap.Int("commands", len(results)), zap.Int("failed", failed),
		zap.Int("users", m.NumberUsers()))

	if opts.json {
		err = writeJSON(out, results)
	} else {
		writeTable(out, results)
	}
	if err != nil {
		return err
	}
	if opts.strict && failed > 0 {
		return errors.Newf("%d of %d commands failed", failed, len(results))
	}
	return nil
}

func writeJSON(w io.Writer, results []result) error {
	for _, r := range results {
		b, err := sonnet.Marshal(r)
		if err != nil {
			return errors.Wrapf(err, "encode line %d", r.Line)
		}
		if _, err := fmt.Fprintln(w, string(b)); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, results []result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Command", "Target", "Result"})
	table.SetAutoWrapText(false)
	var details []result
	for _, r := range results {
		status := "OK"
		if !r.OK {
			status = "FAIL"
		}
		table.Append([]string{fmt.Sprint(r.Line), r.Command, r.Target, status + ": " + r.Message})
		if r.OK && r.Data != nil {
			details = append(details, r)
		}
	}
	table.Render()

	for _, r := range details {
		switch d := r.Data.(type) {
		case []vault.UserInfo:
			users := tablewriter.NewWriter(w)
			users.SetHeader([]string{"Username", "ID", "Apps"})
			for _, u := range d {
				users.Append([]string{u.Username, u.ID.String(), fmt.Sprint(u.Apps)})
			}
			fmt.Fprintf(w, "line %d: users\n", r.Line)
			users.Render()
		default:
			b, err := sonnet.Marshal(d)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "line %d: %s\n", r.Line, b)
		}
	}
}
