package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"perfreview/internal/domain/auth"
	"perfreview/internal/domain/catalog"
	"perfreview/internal/domain/scoring"
)

var errDrift = errors.New("catalog weights drift")

func newCatalogCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [role]",
		Short: "List roles, or the metrics that apply to one role grouped by pillar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(v)
			if err != nil {
				return err
			}
			styles := newPrintStyles(v)
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, styles.header.Render("Catalog "+cat.Version()))
				for _, role := range catalog.Roles {
					metrics, _ := cat.Applicable(role)
					fmt.Fprintf(out, "  %-20s %2d metrics  weight %g\n", role, len(metrics), cat.RoleWeight(role))
				}
				return nil
			}
			groups, err := cat.Groups(catalog.Role(args[0]))
			if err != nil {
				return err
			}
			printGroups(out, styles, groups)
			return nil
		},
	}
}

func printGroups(out io.Writer, styles printStyles, groups []catalog.PillarGroup) {
	for _, group := range groups {
		fmt.Fprintf(out, "%s %s\n", styles.header.Render(group.Title), styles.dim.Render(fmt.Sprintf("(weight %g)", group.TotalWeight)))
		if group.Empty() {
			fmt.Fprintln(out, styles.dim.Render("  no applicable metrics"))
			continue
		}
		for _, metric := range group.Metrics {
			fmt.Fprintf(out, "  %-4s %-36s %5g\n", metric.ID, metric.Name, metric.Weight)
		}
	}
}

func newCheckCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every role's metric weights sum to 100",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(v)
			if err != nil {
				return err
			}
			styles := newPrintStyles(v)
			drift := cat.CheckWeights()
			if len(drift) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), styles.good.Render("ok")+" all role weights sum to 100")
				return nil
			}
			for _, d := range drift {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s sums to %g\n", styles.bad.Render("drift"), d.Role, d.Total)
			}
			return fmt.Errorf("%w: %d role(s)", errDrift, len(drift))
		},
	}
}

func newRateCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <score>",
		Short: "Classify a final score into its rating band",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("score %q is not a number", args[0])
			}
			rating := scoring.Classify(score)
			fmt.Fprintf(cmd.OutOrStdout(), "%g %s (band %d)\n", score, newPrintStyles(v).rating(rating), rating.BucketIndex)
			return nil
		},
	}
}

func newScoreCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score --role ROLE METRIC=SCORE...",
		Short: "Compute pillar and final scores from metric values",
		Example: `  perfctl score --role staff_analyst K1=4 K2=5 P3=3
Metrics left out count as unset (0).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(v)
			if err != nil {
				return err
			}
			role := catalog.Role(v.GetString("role"))
			groups, err := cat.Groups(role)
			if err != nil {
				return err
			}
			values, err := parseScores(args, groups)
			if err != nil {
				return err
			}

			result := scoring.Aggregate(groups, values)
			styles := newPrintStyles(v)
			out := cmd.OutOrStdout()
			for _, pillar := range result.Pillars {
				value := styles.dim.Render("n/a")
				if pillar.Score != nil {
					value = fmt.Sprintf("%.2f", *pillar.Score)
				}
				fmt.Fprintf(out, "  %-22s %s\n", pillar.Title, value)
			}
			rating := scoring.Classify(result.Final)
			fmt.Fprintf(out, "%s %.2f %s\n", styles.label.Render("Final"), result.Final, styles.rating(rating))
			if missing := unsetMetrics(groups, values); len(missing) > 0 {
				fmt.Fprintln(out, styles.warn.Render("unset: "+strings.Join(missing, ", ")))
			}
			return nil
		},
	}
	cmd.Flags().String("role", "", "Role whose weights apply")
	_ = cmd.MarkFlagRequired("role")
	_ = v.BindPFlag("role", cmd.Flags().Lookup("role"))
	return cmd
}

func parseScores(args []string, groups []catalog.PillarGroup) (map[string]int, error) {
	applicable := map[string]bool{}
	for _, group := range groups {
		for _, metric := range group.Metrics {
			applicable[metric.ID] = true
		}
	}
	values := make(map[string]int, len(args))
	for _, arg := range args {
		id, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected METRIC=SCORE, got %q", arg)
		}
		if !applicable[id] {
			return nil, fmt.Errorf("metric %s does not apply to this role", id)
		}
		score, err := strconv.Atoi(raw)
		if err != nil || score < 1 || score > 5 {
			return nil, fmt.Errorf("score for %s must be an integer 1-5", id)
		}
		values[id] = score
	}
	return values, nil
}

func unsetMetrics(groups []catalog.PillarGroup, values map[string]int) []string {
	var missing []string
	for _, group := range groups {
		for _, metric := range group.Metrics {
			if _, ok := values[metric.ID]; !ok {
				missing = append(missing, metric.ID)
			}
		}
	}
	sort.Strings(missing)
	return missing
}

func newTokenCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := v.GetString("secret")
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}
			role := v.GetString("token-role")
			if !auth.ValidRole(role) {
				return fmt.Errorf("unknown role %q", role)
			}
			token, err := auth.GenerateToken(secret, auth.Claims{
				UserID:     v.GetString("user"),
				EmployeeID: v.GetString("employee"),
				RoleName:   role,
			}, v.GetDuration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("secret", "", "HMAC signing secret")
	cmd.Flags().String("user", "dev-user", "User id claim")
	cmd.Flags().String("employee", "", "Employee id claim")
	cmd.Flags().String("role", auth.RoleManager, "Role claim (employee|manager|hr)")
	cmd.Flags().Duration("ttl", 8*time.Hour, "Token lifetime")
	_ = v.BindPFlag("secret", cmd.Flags().Lookup("secret"))
	_ = v.BindEnv("secret", "JWT_SECRET")
	_ = v.BindPFlag("user", cmd.Flags().Lookup("user"))
	_ = v.BindPFlag("employee", cmd.Flags().Lookup("employee"))
	_ = v.BindPFlag("token-role", cmd.Flags().Lookup("role"))
	_ = v.BindPFlag("ttl", cmd.Flags().Lookup("ttl"))
	return cmd
}
