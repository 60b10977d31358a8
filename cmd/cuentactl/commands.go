package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Lixing-Zhang/cuenta/internal/app"
	"github.com/Lixing-Zhang/cuenta/internal/catalog"
	"github.com/Lixing-Zhang/cuenta/internal/feed"
	"github.com/Lixing-Zhang/cuenta/internal/geo"
	"github.com/Lixing-Zhang/cuenta/internal/models"
	"github.com/Lixing-Zhang/cuenta/internal/repository"
	"github.com/Lixing-Zhang/cuenta/internal/service"
	"github.com/Lixing-Zhang/cuenta/pkg/logger"
)

type rootOptions struct {
	storesFile string
	jsonOutput bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "cuentactl",
		Short:         "Query Houston grocery stores and rank protein products",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.storesFile, "stores", "", "YAML store table (default: built-in Houston table)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of a table")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newNearestCmd(opts),
		newChainsCmd(opts),
		newRankCmd(opts),
		newImportCmd(opts),
	)
	return root
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	return logger.NewWithWriter(w, o.logLevel)
}

func (o *rootOptions) storeRepository() repository.StoreRepository {
	if o.storesFile != "" {
		return repository.NewFileStoreRepository(o.storesFile)
	}
	return repository.NewEmbeddedStoreRepository()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newNearestCmd(opts *rootOptions) *cobra.Command {
	var (
		lat, lon float64
		chain    string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "List the stores closest to a coordinate",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := geo.ValidateCoordinates(lat, lon); err != nil {
				return err
			}

			stores, err := opts.storeRepository().All(cmd.Context())
			if err != nil {
				return err
			}

			nearby := geo.FindNearest(stores, lat, lon, limit, chain)
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, nearby)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MILES\tCHAIN\tNAME\tADDRESS")
			for _, s := range nearby {
				fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\n", s.Distance, s.Chain, s.Name, s.Address)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in decimal degrees")
	cmd.Flags().StringVar(&chain, "chain", "", "restrict to one chain (case-insensitive)")
	cmd.Flags().IntVar(&limit, "limit", geo.DefaultNearestLimit, "maximum number of stores")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func newChainsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List store chains with their store counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := opts.storeRepository().All(cmd.Context())
			if err != nil {
				return err
			}

			chains := geo.Chains(stores)
			counts := geo.CountByChain(stores)
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, map[string]any{"chains": chains, "counts": counts})
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CHAIN\tSTORES")
			for _, c := range chains {
				fmt.Fprintf(tw, "%s\t%d\n", c, counts[c])
			}
			return tw.Flush()
		},
	}
}

func newRankCmd(opts *rootOptions) *cobra.Command {
	var (
		feeds    []string
		category string
		orderBy  string
		q        catalog.Query
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank products from feeds (or the sample catalog) by protein efficiency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products := repository.SeedProducts()
			if len(feeds) > 0 {
				loader := feed.NewLoader(feed.WithLogger(opts.logger(cmd.ErrOrStderr())))
				loaded, err := loader.Load(cmd.Context(), feeds)
				if err != nil {
					return err
				}
				products = loaded
			}

			q.Category = models.Category(category)
			q.OrderBy = catalog.OrderBy(orderBy)

			svc := service.NewCatalogService(repository.NewInMemoryProductRepository(products))
			result, err := svc.ListProducts(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, result)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tPROTEIN\tG/$\tG/100CAL\tSTORE")
			for _, p := range result.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.0f\t%.2f\t%.2f\t%s\n",
					p.ID, p.Name, p.Category, p.Price, p.Protein, p.ProteinPerDollar, p.ProteinPer100Cal, p.StoreID)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringSliceVar(&feeds, "feed", nil, "product feed (path, http(s) URL); repeatable")
	cmd.Flags().StringVar(&category, "category", "", "category filter (all for no filter)")
	cmd.Flags().StringVar(&orderBy, "order-by", string(catalog.OrderByProteinPerDollar), "protein_per_dollar, protein_per_100cal, protein or price")
	cmd.Flags().Float64Var(&q.MinProtein, "min-protein", 0, "only products with more protein than this")
	cmd.Flags().IntVar(&q.Limit, "limit", catalog.DefaultLimit, "maximum number of products")
	cmd.Flags().StringVar(&q.StoreID, "store-id", "", "only products from this store")
	cmd.Flags().StringVar(&q.Search, "q", "", "case-insensitive name search")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		feeds   []string
		dialect string
		dsn     string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load product feeds into a SQLite or Postgres products table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := opts.logger(cmd.ErrOrStderr())

			d := repository.Dialect(dialect)
			db, err := repository.OpenDB(ctx, d, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewSQLProductRepository(db, d)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}

			n, err := app.ImportFeeds(ctx, feed.NewLoader(feed.WithLogger(log)), repo, feeds, log)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", n)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&feeds, "feed", nil, "product feed (path, http(s) URL); repeatable")
	cmd.Flags().StringVar(&dialect, "dialect", string(repository.DialectSQLite), "sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN")
	_ = cmd.MarkFlagRequired("feed")
	_ = cmd.MarkFlagRequired("dsn")
	return cmd
}
