package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/gitlet/internal/repository"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout [<commit id>] -- <file> | checkout <branch>",
	Short: "Restore a file or switch branches",
	Long: `Three forms:

  gitlet checkout -- <file>              # restore file from the current commit
  gitlet checkout <commit id> -- <file>  # restore file from a commit
  gitlet checkout <branch>               # switch to a branch`,
	RunE: runCheckout,
}

var branchCmd = &cobra.Command{
	Use:   "branch <name>",
	Short: "Create a branch at the current commit",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd, func(r *repository.Repository) error {
			return r.Branch(args[0])
		})
	},
}

var rmBranchCmd = &cobra.Command{
	Use:   "rm-branch <name>",
	Short: "Delete a branch pointer",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd, func(r *repository.Repository) error {
			return r.RemoveBranch(args[0])
		})
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch into the current branch",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd, func(r *repository.Repository) error {
			res, err := r.Merge(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if notice := res.Outcome.Notice(); notice != "" {
				fmt.Fprintln(out, notice)
			}
			if len(res.Conflicted) > 0 {
				fmt.Fprintln(out, repository.ConflictNotice)
			}
			return nil
		})
	},
}

func runCheckout(cmd *cobra.Command, args []string) error {
	var checkout func(*repository.Repository) error
	switch dash := cmd.ArgsLenAtDash(); {
	case dash == 0 && len(args) == 1:
		checkout = func(r *repository.Repository) error { return r.CheckoutHeadFile(args[0]) }
	case dash == 1 && len(args) == 2:
		checkout = func(r *repository.Repository) error { return r.CheckoutFile(args[0], args[1]) }
	case dash == -1 && len(args) == 1:
		checkout = func(r *repository.Repository) error { return r.CheckoutBranch(args[0]) }
	default:
		return errIncorrectOperands
	}
	return withRepo(cmd, checkout)
}
