package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javanhut/gitlet/internal/colors"
	"github.com/javanhut/gitlet/internal/repository"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show branches, staged files and working directory changes",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd, func(r *repository.Repository) error {
			st, err := r.Status()
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), palette(cmd, r), st)
			return nil
		})
	},
}

func printStatus(w io.Writer, p colors.Palette, st *repository.Status) {
	section := func(title string, lines []string) {
		fmt.Fprintln(w, p.SectionHeader("=== "+title+" ==="))
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}

	var branches []string
	for _, b := range st.Branches {
		if b == st.CurrentBranch {
			branches = append(branches, p.Current("*"+b))
		} else {
			branches = append(branches, b)
		}
	}
	section("Branches", branches)

	section("Staged Files", colorAll(st.Staged, p.Staged))
	section("Removed Files", colorAll(st.Removed, p.Deleted))

	var mods []string
	for _, m := range st.Modifications {
		line := fmt.Sprintf("%s (%s)", m.Name, m.Kind)
		if m.Kind == repository.Deleted {
			mods = append(mods, p.Deleted(line))
		} else {
			mods = append(mods, p.Modified(line))
		}
	}
	section("Modifications Not Staged For Commit", mods)

	section("Untracked Files", colorAll(st.Untracked, p.Untracked))
}

func colorAll(names []string, color func(string) string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = color(n)
	}
	return out
}
