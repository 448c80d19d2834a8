package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javanhut/gitlet/internal/colors"
	"github.com/javanhut/gitlet/internal/commit"
	"github.com/javanhut/gitlet/internal/repository"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the history of the current branch",
	Long: `Display commits from HEAD back to the initial commit, following first
parents only.

Examples:
  gitlet log                  # Show all commits
  gitlet log --oneline        # Show one line per commit
  gitlet log --limit 10       # Show only the last 10 commits`,
	Args: exactArgs(0),
	RunE: runLog,
}

var globalLogCmd = &cobra.Command{
	Use:   "global-log",
	Short: "Show every commit ever made",
	Args:  exactArgs(0),
	RunE:  runGlobalLog,
}

var findCmd = &cobra.Command{
	Use:   "find <message>",
	Short: "Print the ids of commits with the given message",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd, func(r *repository.Repository) error {
			ids, err := r.Find(args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var (
	logOneline bool
	logLimit   int
)

func init() {
	for _, c := range []*cobra.Command{logCmd, globalLogCmd} {
		c.Flags().BoolVar(&logOneline, "oneline", false, "Show one line per commit")
		c.Flags().IntVar(&logLimit, "limit", 0, "Limit number of commits to show")
	}
}

func runLog(cmd *cobra.Command, args []string) error {
	return withRepo(cmd, func(r *repository.Repository) error {
		commits, err := r.Log()
		if err != nil {
			return err
		}
		printCommits(cmd.OutOrStdout(), palette(cmd, r), commits)
		return nil
	})
}

func runGlobalLog(cmd *cobra.Command, args []string) error {
	return withRepo(cmd, func(r *repository.Repository) error {
		commits, err := r.GlobalLog()
		if err != nil {
			return err
		}
		printCommits(cmd.OutOrStdout(), palette(cmd, r), commits)
		return nil
	})
}

func printCommits(w io.Writer, p colors.Palette, commits []*commit.Commit) {
	if logLimit > 0 && len(commits) > logLimit {
		commits = commits[:logLimit]
	}
	for _, c := range commits {
		if logOneline {
			fmt.Fprintf(w, "%s %s\n", p.CommitID(c.ID.Short(7)), c.Message)
			continue
		}
		printCommit(w, p, c)
	}
}

// printCommit writes one log entry:
//
//	===
//	commit <id>
//	Merge: <parent1> <parent2>
//	Date: <timestamp>
//	<message>
//
// The Merge line only appears for merge commits.
func printCommit(w io.Writer, p colors.Palette, c *commit.Commit) {
	fmt.Fprintln(w, "===")
	fmt.Fprintf(w, "commit %s\n", p.CommitID(c.ID.String()))
	if c.IsMerge() {
		fmt.Fprintf(w, "Merge: %s %s\n", c.Parents[0].Short(7), c.Parents[1].Short(7))
	}
	fmt.Fprintf(w, "Date: %s\n", c.Timestamp)
	fmt.Fprintln(w, c.Message)
	fmt.Fprintln(w)
}
