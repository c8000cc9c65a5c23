package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arborworks/arbor/core/protocol"
	"github.com/arborworks/arbor/nav"
	"github.com/arborworks/arbor/persist"
	"github.com/arborworks/arbor/provider"
	"github.com/arborworks/arbor/session"
	"github.com/arborworks/arbor/tree"
)

// exploreCmd opens an interactive cursor over a saved snapshot.
var exploreCmd = &cobra.Command{
	Use:   "explore <snapshot-file>",
	Short: "Navigate a saved conversation tree interactively",
	Long: `Explore loads a snapshot and starts a read-only prompt over stdin.
Commands move the cursor through the tree; "show" prints the node under the
cursor. Generation is disabled during exploration.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read snapshot: %v", err)
		}

		var snap persist.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Fatalf("Failed to parse snapshot: %v", err)
		}

		s, err := persist.Restore(snap, readOnlyProvider{})
		if err != nil {
			log.Fatalf("Failed to restore session: %v", err)
		}

		fmt.Printf("exploring session %s (%d nodes)\n", s.ID(), tree.Count(s.Root()))
		repl(s, nav.New(s))
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}

func repl(s *session.Session, n *nav.Navigator) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, arg := fields[0], strings.Join(fields[1:], " ")

		var status string
		switch cmd {
		case "u", "up":
			status, _ = n.Up()
		case "d", "down":
			status, _ = n.Down()
		case "l", "left":
			status, _ = n.Left()
		case "r", "right":
			status, _ = n.Right()
		case "root":
			status, _ = n.Root()
		case "pf":
			status, _ = n.PreviousFork()
		case "nf":
			status, _ = n.NextFork()
		case "leaves":
			status, _ = n.ListLeaves()
		case "jump":
			i, err := strconv.Atoi(arg)
			if err != nil {
				status = fmt.Sprintf("jump needs a leaf number, got %q", arg)
				break
			}
			status, _ = n.JumpToLeaf(i)
		case "label":
			if arg == "" {
				status = "label needs a name"
				break
			}
			status, _ = n.Label(arg)
		case "goto":
			if arg == "" {
				status = "goto needs a label name"
				break
			}
			status, _ = n.Goto(arg)
		case "show":
			status = nav.Render(s.Current())
		case "help", "?":
			status = exploreHelp
		case "q", "quit", "exit":
			return
		default:
			status = fmt.Sprintf("unknown command %q (try help)", cmd)
		}
		fmt.Println(status)
	}
}

const exploreHelp = `commands:
  u / d / l / r    move up, down (first child), left, right (siblings wrap)
  root             jump to the tree root
  pf / nf          jump to the nearest fork above / below
  leaves           list all leaves
  jump N           jump to leaf N from the last listing
  label NAME       label the current node (existing name: go to it)
  goto NAME        jump to a labeled node
  show             print the current node
  quit             leave`

// readOnlyProvider backs exploration sessions. Snapshots are navigated, not
// extended, so every generation attempt is refused.
type readOnlyProvider struct{}

var errReadOnly = errors.New("generation disabled in explore mode")

func (readOnlyProvider) Generate(context.Context, []protocol.Message) (provider.Reply, error) {
	return provider.Reply{}, errReadOnly
}

func (readOnlyProvider) HasPendingToolCalls() bool { return false }

func (readOnlyProvider) ClearPendingToolState() {}

func (p readOnlyProvider) Fork() provider.Provider { return p }
