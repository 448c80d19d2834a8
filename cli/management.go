package cli

import (
	"github.com/spf13/cobra"

	"github.com/javanhut/gitlet/internal/repository"
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Stage a file for the next commit",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd, func(r *repository.Repository) error {
			return r.Add(args[0])
		})
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit <message>",
	Short: "Record the staged snapshot",
	Long:  "Creates a commit from the current commit's files plus the staging area, then clears the staging area",
	RunE: func(cmd *cobra.Command, args []string) error {
		var message string
		switch len(args) {
		case 0:
		case 1:
			message = args[0]
		default:
			return errIncorrectOperands
		}
		return withRepo(cmd, func(r *repository.Repository) error {
			_, err := r.Commit(message)
			return err
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Unstage a file or stage its removal",
	Long: `Unstages a file staged for addition. If the file is tracked by the
current commit, stages it for removal and deletes it from the working
directory.`,
	Args: exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd, func(r *repository.Repository) error {
			return r.Remove(args[0])
		})
	},
}
