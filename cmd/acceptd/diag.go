package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acceptd/acceptd/internal/config"
	"github.com/acceptd/acceptd/internal/domain"
	"github.com/acceptd/acceptd/internal/infra"
)

// Diagnostic commands for figuring out why a button is not being matched:
// list the windows the backend sees, and dump the button names inside the
// target window.

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List top-level windows with their class tags",
	RunE:  runWindows,
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Dump button controls of the target application's windows",
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().String("class", config.Default().WindowClass, "Top-level window class of the target application")
	treeCmd.Flags().Int("depth", config.Default().SearchDepth, "Maximum subtree search depth")
}

func runWindows(cmd *cobra.Command, args []string) error {
	au, err := infra.NewAutomation()
	if err != nil {
		return err
	}

	windows, err := au.TopLevelWindows()
	if err != nil {
		return fmt.Errorf("enumerate windows: %w", err)
	}

	fmt.Printf("%d top-level window(s):\n", len(windows))
	for _, w := range windows {
		fmt.Printf("  [%s] %q\n", w.Class(), w.Title())
	}
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	class, _ := cmd.Flags().GetString("class")
	depth, _ := cmd.Flags().GetInt("depth")

	au, err := infra.NewAutomation()
	if err != nil {
		return err
	}

	windows, err := au.TopLevelWindows()
	if err != nil {
		return fmt.Errorf("enumerate windows: %w", err)
	}

	found := false
	for _, w := range windows {
		if w.Class() != class {
			continue
		}
		found = true
		fmt.Printf("Window %q\n", w.Title())

		buttons, err := au.FindControls(w, domain.ControlButton, nil, depth)
		if err != nil {
			fmt.Printf("  search failed: %v\n", err)
			continue
		}
		if len(buttons) == 0 {
			fmt.Println("  (no buttons within depth)")
			continue
		}
		for _, b := range buttons {
			fmt.Printf("  [button] %q\n", b.Name())
		}
	}

	if !found {
		fmt.Printf("No window with class %q found.\n", class)
	}
	return nil
}
