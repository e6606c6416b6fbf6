package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"voting/internal/app"
	"voting/internal/domain"

	"github.com/spf13/cobra"
)

func TopicsCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List topics, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				topics, err := a.Topics.List(ctx)
				if err != nil {
					return err
				}
				if len(topics) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no topics")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tDURATION")
				for _, t := range topics {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%dm\n", t.ID, t.Title, statusLabel(t.Status), t.SessionDuration)
				}
				return tw.Flush()
			})
		},
	}
}

func ResultCmd(open Opener) *cobra.Command {
	var listVotes bool
	cmd := &cobra.Command{
		Use:   "result <topic-id>",
		Short: "Show the vote count of a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTopicID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				topic, tally, err := a.Votes.Result(ctx, id)
				if err != nil {
					return describe(err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "#%d %s [%s]\n", topic.ID, topic.Title, statusLabel(topic.Status))
				fmt.Fprintf(out, "  YES: %d\n  NO:  %d\n  total: %d\n", tally.Yes, tally.No, tally.Total)
				if !listVotes {
					return nil
				}

				ballots, err := a.Votes.Ballots(ctx, id)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VOTE\tCPF\tNAME\tCAST AT")
				for _, v := range ballots {
					cpf, name := "-", "-"
					if v.User != nil {
						cpf, name = v.User.CPF, v.User.Name
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Choice, cpf, name, v.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&listVotes, "votes", false, "also list individual votes")
	return cmd
}

// describe flattens a domain error and its field details into one line.
func describe(err error) error {
	var derr *domain.Error
	if !errors.As(err, &derr) || len(derr.Fields) == 0 {
		return err
	}
	fields := make([]string, 0, len(derr.Fields))
	for f := range derr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(derr.Fields[f], " "))
	}
	return fmt.Errorf("%s (%s)", derr.Msg, strings.Join(parts, "; "))
}
