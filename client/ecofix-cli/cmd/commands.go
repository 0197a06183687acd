package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		token, err := newClient().login(username, password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var footprintCmd = &cobra.Command{
	Use:   "footprint",
	Short: "Log today's activities and print the carbon footprint estimate",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		transportation, _ := cmd.Flags().GetString("transportation")
		diet, _ := cmd.Flags().GetString("diet")
		energy, _ := cmd.Flags().GetFloat64("energy")

		result, err := newClient().logActivity(date, transportation, diet, energy)
		if err != nil {
			return err
		}
		printFootprint(cmd.OutOrStdout(), result)
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the sustainability score for all logged activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := newClient().score()
		if err != nil {
			return err
		}
		printScore(cmd.OutOrStdout(), report)
		return nil
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Print recent energy usage and scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := newClient().chart()
		if err != nil {
			return err
		}
		return printChart(cmd.OutOrStdout(), points)
	},
}

func init() {
	loginCmd.Flags().String("username", "", "account username")
	loginCmd.Flags().String("password", "", "account password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")

	footprintCmd.Flags().String("date", "", "activity date (YYYY-MM-DD), defaults to today")
	footprintCmd.Flags().String("transportation", "", "main means of transportation")
	footprintCmd.Flags().String("diet", "", "diet for the day")
	footprintCmd.Flags().Float64("energy", 0, "energy usage in kWh")
	_ = footprintCmd.MarkFlagRequired("transportation")
	_ = footprintCmd.MarkFlagRequired("diet")

	rootCmd.AddCommand(loginCmd, footprintCmd, scoreCmd, chartCmd)
}

func printFootprint(w io.Writer, r *activityResult) {
	if r.Footprint == nil {
		fmt.Fprintf(w, "Activity saved, carbon footprint: %s\n", r.Note)
		return
	}
	fmt.Fprintf(w, "Carbon footprint: %g %s\n", r.Footprint.Value, r.Footprint.Unit)
}

func printScore(w io.Writer, r *scoreReport) {
	if r.Score == nil {
		fmt.Fprintln(w, "Sustainability score: n/a")
	} else {
		fmt.Fprintf(w, "Sustainability score: %d\n", *r.Score)
	}
	for _, b := range r.Breakdown {
		fmt.Fprintf(w, "  %s: %d\n", b.Category, b.Value)
	}
	if len(r.Suggestions) > 0 {
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}

func printChart(w io.Writer, points []chartPoint) error {
	if len(points) == 0 {
		fmt.Fprintln(w, "No activities in the chart window.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tENERGY USAGE\tSCORE")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%g\t%d\n", p.Date, p.EnergyUsage, p.Score)
	}
	return tw.Flush()
}
