// orgctl inspects the hierarchy the way the server sees it: who a user can
// see and which nodes they manage. Handy when debugging visibility tickets.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	corepersistence "github.com/clarityhq/workplan/modules/core/infrastructure/persistence"
	coreservices "github.com/clarityhq/workplan/modules/core/services"
	orgpersistence "github.com/clarityhq/workplan/modules/org/infrastructure/persistence"
	orgservices "github.com/clarityhq/workplan/modules/org/services"
	"github.com/clarityhq/workplan/pkg/composables"
	"github.com/clarityhq/workplan/pkg/configuration"
)

func main() {
	root := &cobra.Command{
		Use:          "orgctl",
		Short:        "Inspect org visibility and managed subtrees",
		SilenceUsage: true,
	}
	root.AddCommand(visibilityCmd(), subtreeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func visibilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visibility <user-id>",
		Short: "List the people a user can see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrg(cmd.Context(), args[0], func(ctx context.Context, org *orgDeps, userID int64) error {
				people, err := org.resolver.VisiblePeople(ctx, userID)
				if err != nil {
					return err
				}
				for _, p := range people {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", p.ID, p.Carnet, p.FullName)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", len(people))
				return nil
			})
		},
	}
}

func subtreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subtree <user-id>",
		Short: "List the org nodes a user manages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrg(cmd.Context(), args[0], func(ctx context.Context, org *orgDeps, userID int64) error {
				subtree, err := org.graph.ExpandManagedSubtree(ctx, userID)
				if err != nil {
					return err
				}
				ids := subtree.IDs()
				sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", len(ids))
				return nil
			})
		},
	}
}

type orgDeps struct {
	graph    *orgservices.OrgGraphService
	resolver *orgservices.VisibilityResolver
}

func withOrg(ctx context.Context, rawUserID string, fn func(context.Context, *orgDeps, int64) error) error {
	userID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", rawUserID)
	}

	conf := configuration.Use()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer pool.Close()

	users := corepersistence.NewUserRepository()
	identity := coreservices.NewIdentityService(users, conf.AdminRoleSet())
	memberships := orgpersistence.NewMembershipRepository()
	graph := orgservices.NewOrgGraphService(memberships, orgpersistence.NewNodeRepository())
	resolver := orgservices.NewVisibilityResolver(
		users,
		memberships,
		orgpersistence.NewOverrideRepository(),
		orgpersistence.NewDelegationRepository(),
		graph,
		identity,
	)

	return fn(composables.WithPool(ctx, pool), &orgDeps{graph: graph, resolver: resolver}, userID)
}
