package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dream_weaver/internal/directory"
	"dream_weaver/internal/discovery"
	"dream_weaver/internal/location"
)

var (
	nearbyLat   float64
	nearbyLon   float64
	nearbyQuery string
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Find dreamers within 50 km who share your interests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		provider := a.provider
		latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
		if latSet != lonSet {
			return fmt.Errorf("--lat and --lon must be given together")
		}
		if latSet {
			provider = location.NewFixedProvider(nearbyLat, nearbyLon)
		}

		session, status := a.sessions.Open(cmd.Context(), provider)
		defer a.sessions.Close(session.ID)

		if status.State == discovery.StateLocationFailed {
			return fmt.Errorf("%s", a.bundle.T(status.Failure.MessageKey()))
		}

		candidates, err := session.Candidates(a.discoverer, nearbyQuery, a.currentKeywords())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(candidates) == 0 {
			fmt.Fprintln(out, a.bundle.T("discovery_noNearbyUsers"))
			return nil
		}
		for _, c := range candidates {
			printCandidate(cmd, a, c)
		}
		return nil
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <userID>",
	Short: "Follow or unfollow a directory user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		user, ok := directory.ByID(args[0])
		if !ok {
			return fmt.Errorf("unknown user %q", args[0])
		}

		following := a.follows.Toggle(cmd.Context(), user.ID)
		label := a.bundle.T("follow_follow")
		if following {
			label = a.bundle.T("follow_following")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", user.Username, label)
		return nil
	},
}

var followingCmd = &cobra.Command{
	Use:   "following",
	Short: "List the dreamers you follow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		connections := a.discoverer.Connections(a.currentKeywords())
		if len(connections) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), a.bundle.T("connections_none"))
			return nil
		}
		for _, c := range connections {
			printCandidate(cmd, a, c)
		}
		return nil
	},
}

func printCandidate(cmd *cobra.Command, a *app, c discovery.Candidate) {
	out := cmd.OutOrStdout()

	line := c.User.Username
	if c.DistanceKm != nil {
		line += fmt.Sprintf(" (%.1f km)", *c.DistanceKm)
	}
	if c.IsFollowing {
		line += " [" + a.bundle.T("follow_following") + "]"
	}
	fmt.Fprintln(out, line)

	if c.HasSharedInterest {
		fmt.Fprintf(out, "  %s: %s\n", a.bundle.T("discovery_sharedInterests"), strings.Join(c.SharedInterests, ", "))
	}
}

func init() {
	nearbyCmd.Flags().Float64Var(&nearbyLat, "lat", 0, "latitude to search from")
	nearbyCmd.Flags().Float64Var(&nearbyLon, "lon", 0, "longitude to search from")
	nearbyCmd.Flags().StringVarP(&nearbyQuery, "query", "q", "", "filter by username")
}
