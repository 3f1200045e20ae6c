package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"navshell/internal/navigation"
	"navshell/pkg/domain"
)

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "List the destinations visible to a role",
	Long: "Lists every visible destination in registration order. With --width the\n" +
		"output is the layout for that viewport instead.",
	RunE: runDestinations,
}

var mainCmd = &cobra.Command{
	Use:   "main",
	Short: "Resolve the main destination of a role",
	RunE:  runMain,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List registered features and their destinations",
	RunE:  runCatalog,
}

func init() {
	destinationsCmd.Flags().String("role", "", "CLIENT, AGENT or ADMIN (empty for no user)")
	destinationsCmd.Flags().Int("width", -1, "viewport width in dp")
	mainCmd.Flags().String("role", "", "CLIENT, AGENT or ADMIN (empty for no user)")
}

func runDestinations(cmd *cobra.Command, _ []string) error {
	role, err := roleFlag(cmd)
	if err != nil {
		return err
	}
	ws, err := buildWorkspace(cmd, role)
	if err != nil {
		return err
	}
	snap := ws.reg.Snapshot()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer tw.Flush()

	width, _ := cmd.Flags().GetInt("width")
	if width < 0 {
		fmt.Fprintln(tw, "ROUTE\tPLACEMENT\tORDER\tTITLE")
		for _, d := range snap.Destinations {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.Route, d.Placement, d.Order, d.Title)
		}
		return nil
	}

	layout := snap.Layout(width, ws.cfg.Navigation.WideBreakpoint)
	fmt.Fprintf(tw, "surface: %s\n", layout.Surface)
	fmt.Fprintln(tw, "SLOT\tROUTE\tORDER")
	for _, d := range layout.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", layout.Surface, d.Route, d.Order)
	}
	for _, d := range layout.Drawer {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", navigation.PlacementDrawer, d.Route, d.Order)
	}
	return nil
}

func runMain(cmd *cobra.Command, _ []string) error {
	role, err := roleFlag(cmd)
	if err != nil {
		return err
	}
	ws, err := buildWorkspace(cmd, role)
	if err != nil {
		return err
	}
	main := ws.reg.ResolveMainDestination(role)
	if !main.Found() {
		fmt.Fprintln(cmd.OutOrStdout(), "no main destination")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (feature %s, %s)\n", main.Route, main.FeatureID, main.Resolution)
	return nil
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	ws, err := buildWorkspace(cmd, domain.RoleNone)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "FEATURE\tMAIN\tRANK\tROLES\tROUTES")
	for _, p := range ws.providers {
		roles := make([]string, 0, len(domain.AllRoles))
		for _, r := range p.AllowedRoles().Slice() {
			roles = append(roles, r.String())
		}
		routes := make([]string, 0, len(p.Destinations()))
		for _, d := range p.Destinations() {
			routes = append(routes, d.Route)
		}
		rank := "-"
		if r, ok := ws.cfg.Navigation.Priority[p.FeatureID()]; ok {
			rank = strconv.Itoa(r)
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n",
			p.FeatureID(), p.IsMainDestination(), rank, strings.Join(roles, ","), strings.Join(routes, " "))
	}
	return nil
}
