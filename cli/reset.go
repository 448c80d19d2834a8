package cli

import (
	"github.com/spf13/cobra"

	"github.com/javanhut/gitlet/internal/repository"
)

var resetCmd = &cobra.Command{
	Use:   "reset <commit id>",
	Short: "Check out a commit and move the current branch to it",
	Long: `Checks out every file tracked by the given commit, removes files tracked
by the current commit that the given commit lacks, moves the current branch
head to the commit and clears the staging area.

The commit id may be abbreviated to any unique prefix.`,
	Args: exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd, func(r *repository.Repository) error {
			return r.Reset(args[0])
		})
	},
}
