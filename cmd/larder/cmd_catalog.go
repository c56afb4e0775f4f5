package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/larder/internal/catalog"
	"github.com/pders01/larder/internal/domain"
	"github.com/pders01/larder/internal/search"
	"github.com/pders01/larder/internal/tui"
)

// startCatalog runs the controller without a terminal UI. Callers read its
// state through Current, Cuisines and Lookup.
func startCatalog(ctx context.Context, e *env) (*catalog.Controller, error) {
	sess, err := e.requireSession()
	if err != nil {
		return nil, err
	}
	ctrl := catalog.NewController(e.client, nil, catalog.WithSearchDelay(e.cfg.Catalog.SearchDebounce))
	if err := ctrl.Start(ctx, sess.FirstName); err != nil {
		return nil, fmt.Errorf("%s: %w", tui.MsgLoadFailed, err)
	}
	return ctrl, nil
}

func printCard(w io.Writer, r domain.Recipe, maxIngredients int) {
	fmt.Fprintf(w, "#%-4d %s\n", r.ID, r.Name)
	fmt.Fprintf(w, "      %s\n", tui.CardSummary(r))
	ingredients := r.Ingredients
	if maxIngredients > 0 && len(ingredients) > maxIngredients {
		ingredients = ingredients[:maxIngredients]
	}
	if len(ingredients) > 0 {
		fmt.Fprintf(w, "      %s\n", strings.Join(ingredients, " · "))
	}
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var query, cuisine string
	var pages int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print catalog pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctrl, err := startCatalog(cmd.Context(), e)
			if err != nil {
				return err
			}
			if query != "" {
				ctrl.ApplyQuery(query)
			}
			if cuisine != "" {
				ctrl.SetCuisine(cuisine)
			}

			out := cmd.OutOrStdout()
			maxIngredients := e.cfg.UI.Card.MaxIngredients

			p := ctrl.Current()
			if p.Status == catalog.StatusEmpty {
				fmt.Fprintln(out, tui.MsgNoRecipes)
				return nil
			}
			for _, r := range p.Items {
				printCard(out, r, maxIngredients)
			}
			for page := 1; page < pages && p.HasMore; page++ {
				ctrl.ShowMore()
				p = ctrl.Current()
				for _, r := range p.Items {
					printCard(out, r, maxIngredients)
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, tui.MsgShowing(p.Shown, p.Matches))
			if p.HasMore {
				fmt.Fprintf(out, "more available: --pages %d\n", pages+1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search text")
	cmd.Flags().StringVarP(&cuisine, "cuisine", "c", "", "Exact cuisine label")
	cmd.Flags().IntVarP(&pages, "pages", "n", 1, "Number of pages to print")
	return cmd
}

func newCuisinesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cuisines",
		Short: "List the cuisines in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctrl, err := startCatalog(cmd.Context(), e)
			if err != nil {
				return err
			}
			for _, c := range ctrl.Cuisines() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recipe in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid recipe id %q", args[0])
			}

			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctrl, err := startCatalog(cmd.Context(), e)
			if err != nil {
				return err
			}
			r, ok := ctrl.Lookup(id)
			if !ok {
				return fmt.Errorf("recipe %d: %w", id, domain.ErrNotFound)
			}

			out, err := tui.RenderRecipe(r, width)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 80, "Word wrap width")
	return cmd
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var limit int
	var cuisine string

	cmd := &cobra.Command{
		Use:   "search <terms...>",
		Short: "Rank recipes by relevance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if _, err := e.requireSession(); err != nil {
				return err
			}
			recipes, err := e.client.Recipes(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", tui.MsgLoadFailed, err)
			}

			idx, err := search.NewIndex(recipes)
			if err != nil {
				return err
			}
			defer idx.Close()

			results, err := idx.Search(strings.Join(args, " "), cuisine, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, tui.MsgNoRecipes)
				return nil
			}
			for i, res := range results {
				fmt.Fprintf(out, "%2d. %s (%.2f)\n", i+1, res.Recipe.Name, res.Score)
				fmt.Fprintf(out, "    #%d • %s\n", res.Recipe.ID, tui.CardSummary(res.Recipe))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum results")
	cmd.Flags().StringVarP(&cuisine, "cuisine", "c", "", "Restrict to one cuisine")
	return cmd
}
