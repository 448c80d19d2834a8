package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/javanhut/gitlet/internal/colors"
	"github.com/javanhut/gitlet/internal/config"
	"github.com/javanhut/gitlet/internal/repository"
)

// usageError is a command line mistake. Like repository user errors it is
// reported on stdout and does not fail the process.
type usageError string

func (e usageError) Error() string { return string(e) }

const (
	errNoCommand         usageError = "Please enter a command."
	errUnknownCommand    usageError = "No command with that name exists."
	errIncorrectOperands usageError = "Incorrect operands."
)

var rootCmd = &cobra.Command{
	Use:   "gitlet",
	Short: "Gitlet is a small version-control system",
	Long: `Gitlet keeps snapshots of a flat working directory as commits, with
branches, checkout, reset and three-way merge.`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errNoCommand
		}
		return errUnknownCommand
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new gitlet repository",
	Long:  "Creates a .gitlet control directory with a single initial commit on the default branch",
	Args:  exactArgs(0),
	RunE:  initCommand,
}

var (
	initStorage       string
	initCompression   string
	initDefaultBranch string
)

// Execute runs the command line and exits the process.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the exit code. Recognized
// failures are printed on stdout and exit 0; anything else is printed on
// stderr and exits 1.
func run(args []string, stdout, stderr io.Writer) int {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var usage usageError
	if errors.As(err, &usage) || repository.IsUserError(err) {
		fmt.Fprintln(stdout, repository.Message(err))
		return 0
	}
	fmt.Fprintf(stderr, "gitlet: %v\n", err)
	return 1
}

func init() {
	viper.SetEnvPrefix("gitlet")
	viper.AutomaticEnv()
	viper.SetDefault("lock_wait", 5*time.Second)

	rootCmd.PersistentFlags().String("dir", "", "Repository root (default is the current directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log diagnostics to stderr")
	viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.SetFlagErrorFunc(func(*cobra.Command, error) error {
		return errIncorrectOperands
	})
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initCmd.Flags().StringVar(&initStorage, "storage", config.StorageFiles, "Storage engine for refs and staging (files, bolt)")
	initCmd.Flags().StringVar(&initCompression, "compression", config.CompressionNone, "Object compression (none, zstd)")
	initCmd.Flags().StringVar(&initDefaultBranch, "default-branch", "master", "Name of the first branch")

	rootCmd.AddCommand(initCmd)

	// File and commit management commands
	rootCmd.AddCommand(addCmd, commitCmd, rmCmd)

	// History
	rootCmd.AddCommand(logCmd, globalLogCmd, findCmd, statusCmd)

	// Branches and working directory
	rootCmd.AddCommand(checkoutCmd, branchCmd, rmBranchCmd, resetCmd, mergeCmd)

	rootCmd.AddCommand(configCmd)
}

func initCommand(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	cfg := config.DefaultConfig()
	cfg.Core.Storage = initStorage
	cfg.Core.Compression = initCompression
	cfg.Core.DefaultBranch = initDefaultBranch

	r, err := repository.Init(afero.NewOsFs(), root, repositoryOptions(cmd, cfg))
	if err != nil {
		return err
	}
	return r.Close()
}

// withRepo opens the repository for the duration of fn.
func withRepo(cmd *cobra.Command, fn func(*repository.Repository) error) (err error) {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	r, err := repository.Open(afero.NewOsFs(), root, repositoryOptions(cmd, nil))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()
	return fn(r)
}

func repositoryOptions(cmd *cobra.Command, cfg *config.Config) repository.Options {
	opts := repository.Options{
		Config:   cfg,
		LockWait: viper.GetDuration("lock_wait"),
	}
	if viper.GetBool("verbose") {
		opts.Logger = log.New(cmd.ErrOrStderr(), "gitlet: ", log.Ltime)
	}
	return opts
}

func repoRoot() (string, error) {
	if dir := viper.GetString("dir"); dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return wd, nil
}

func palette(cmd *cobra.Command, r *repository.Repository) colors.Palette {
	return colors.ForWriter(cmd.OutOrStdout(), r.Config.Color.UI)
}

// exactArgs is cobra.ExactArgs with the gitlet operand message.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errIncorrectOperands
		}
		return nil
	}
}

// resetFlags restores every flag to its default so the package level
// commands can run more than once in a process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
