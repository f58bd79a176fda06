package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

// GroupsOptions holds flags for the groups commands.
type GroupsOptions struct {
	*RootOptions
	Database string
}

// GroupList is the output of groups list.
type GroupList struct {
	Groups []GroupEntry `json:"groups"`
}

// GroupEntry is one group in the listing.
type GroupEntry struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
}

func (l GroupList) String() string {
	if len(l.Groups) == 0 {
		return "No groups."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d group(s)", len(l.Groups))
	for _, g := range l.Groups {
		fmt.Fprintf(&b, "\n  %s  %d member(s)", g.ID, g.Members)
	}
	return b.String()
}

// GroupDetail is the output of groups show.
type GroupDetail struct {
	ID      string          `json:"id"`
	Members []record.Record `json:"members"`
	Profile store.Profile   `json:"profile"`
}

func (d GroupDetail) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Group %s\n", d.ID)
	fmt.Fprintf(&b, "Members (%d):", len(d.Members))
	for i, m := range d.Members {
		fmt.Fprintf(&b, "\n  [%d] %-13s %-12s %s", i, m.Type, m.EntityID, m.Transaction)
		if m.LinkGroupID != "" {
			fmt.Fprintf(&b, " -> %s", m.LinkGroupID)
		}
	}
	if d.Profile.Empty() {
		b.WriteString("\nProfile: (none)")
		return b.String()
	}
	fmt.Fprintf(&b, "\nProfile (%s):", strings.Join(d.Profile.Fields, ", "))
	for i, row := range d.Profile.Rows {
		cells := make([]string, len(d.Profile.Fields))
		for j, f := range d.Profile.Fields {
			v, ok := row[f]
			if !ok {
				v = "null"
			}
			cells[j] = v
		}
		fmt.Fprintf(&b, "\n  [%d] %s", i, strings.Join(cells, " | "))
	}
	return b.String()
}

// NewGroupsCommand creates the groups command and its subcommands.
func NewGroupsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GroupsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Inspect stored groups",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List every group with its member count",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listGroups(opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show <group-id>",
		Short:         "Show a group's members and profile",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showGroup(opts, args[0], cmd)
		},
	})

	return cmd
}

func listGroups(opts *GroupsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openExisting(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	ids, err := st.ListGroupIDs(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to list groups", err)
	}

	list := GroupList{Groups: make([]GroupEntry, 0, len(ids))}
	for _, id := range ids {
		members, err := st.LoadGroup(ctx, id)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, "failed to load group", err)
		}
		list.Groups = append(list.Groups, GroupEntry{ID: id, Members: len(members)})
	}
	return formatter.Success(list)
}

func showGroup(opts *GroupsOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openExisting(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	members, err := st.LoadGroup(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("group not found: %s", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to load group", err)
	}
	profile, err := st.LoadProfile(ctx, id)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to load profile", err)
	}

	return formatter.Success(GroupDetail{ID: id, Members: members, Profile: profile})
}

// openExisting opens a database that must already exist, so read-only
// commands never create an empty file by accident.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}
