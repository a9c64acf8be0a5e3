// Package cli provides the Cobra-based CLI for the catalog client.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"catalogdash/config"
	"catalogdash/domain"
	"catalogdash/gateway"
	"catalogdash/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:           "catalog",
		Short:         "Browse, filter and extend a remote product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// IMPORTANT: allow tests and the shell session to keep one catalog
			if catalog != nil {
				return nil
			}

			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(logger)

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			gw, err := gateway.New(cfg, logger, reg)
			if err != nil {
				return err
			}
			if cfg.MetricsAddr != "" {
				serveMetrics(cfg.MetricsAddr, reg, logger)
			}

			breaker = gw.Breaker
			catalog = store.New(gw, store.WithItemsPerPage(cfg.PerPage), store.WithLogger(logger))
			return nil
		},
	}

	catalog *store.Store
	breaker *gateway.Breaker
)

func newLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics endpoint stopped", "error", err)
		}
	}()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String(config.KeyConfig, "", "config file (yaml, json or toml)")
	pf.String(config.KeyGateway, config.GatewayHTTP, "catalog backend: http|file")
	pf.String(config.KeyURL, config.DefaultURL, "catalog list endpoint")
	pf.String(config.KeyCreateURL, "", "create endpoint (defaults to --url)")
	pf.String(config.KeyFile, "data/products.json", "catalog file for the file backend")
	pf.Duration(config.KeyTimeout, 0, "overall request timeout, 0 for none")
	pf.Bool(config.KeyBreaker, false, "guard the HTTP backend with a circuit breaker")
	pf.Int(config.KeyPerPage, domain.DefaultItemsPerPage, "products per page")
	pf.String(config.KeyLogLevel, "info", "log level: debug|info|warn|error")
	pf.String(config.KeyLogFormat, "text", "log format: text|json")
	pf.String(config.KeyMetricsAddr, "", "serve prometheus metrics on this address")

	for _, key := range []string{
		config.KeyConfig, config.KeyGateway, config.KeyURL, config.KeyCreateURL,
		config.KeyFile, config.KeyTimeout, config.KeyBreaker, config.KeyPerPage,
		config.KeyLogLevel, config.KeyLogFormat, config.KeyMetricsAddr,
	} {
		_ = viper.BindPFlag(key, pf.Lookup(key))
	}
	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	rootCmd.AddCommand(
		newShellCmd(),
		newListCmd(),
		newRefreshCmd(),
		newShowCmd(),
		newCreateCmd(),
		newImportCmd(),
		newCategoriesCmd(),
		newPriceRangeCmd(),
		newStatusCmd(),
		newClearCmd(),
		newExportCmd(),
	)
}

// ensureLoaded fetches the catalog once per session.
func ensureLoaded(ctx context.Context) error {
	if catalog.State().Status != store.StatusIdle {
		return nil
	}
	return catalog.FetchAll(ctx)
}

func fetchFailed(err error) error {
	return &hintError{err: err, hint: "Run `refresh` to try again."}
}

func newListCmd() *cobra.Command {
	var search, category, sortBy, output string
	var minPrice, maxPrice float64
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the current page of products",
		Long: "List the current page of products. Filter flags persist for the session " +
			"and any filter change returns to page 1. A negative price bound removes it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "table" && output != "json" {
				return fmt.Errorf("unknown output format %q (want table or json)", output)
			}
			var by domain.SortBy
			if cmd.Flags().Changed("sort-by") {
				var err error
				if by, err = domain.ParseSortBy(sortBy); err != nil {
					return err
				}
			}

			if err := ensureLoaded(cmd.Context()); err != nil && len(catalog.State().Products) == 0 {
				return fetchFailed(err)
			}

			flags := cmd.Flags()
			if flags.Changed("search") {
				catalog.SetSearchTerm(search)
			}
			if flags.Changed("category") {
				catalog.SetCategory(category)
			}
			if flags.Changed("min-price") || flags.Changed("max-price") {
				current := catalog.State().Filters
				lo, hi := current.MinPrice, current.MaxPrice
				if flags.Changed("min-price") {
					lo = bound(minPrice)
				}
				if flags.Changed("max-price") {
					hi = bound(maxPrice)
				}
				catalog.SetPriceRange(lo, hi)
			}
			if flags.Changed("sort-by") {
				catalog.SetSortBy(by)
			}
			if flags.Changed("page") {
				catalog.SetCurrentPage(page)
			}

			st := catalog.State()
			if st.Status == store.StatusFailed {
				if len(st.Products) == 0 {
					return fetchFailed(errors.New(st.Error))
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: last refresh failed: %s (showing previous results)\n", st.Error)
			}

			view := catalog.Visible()
			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			renderPage(cmd.OutOrStdout(), view, catalog.HasActiveFilters())
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "match title or category, case-insensitive")
	cmd.Flags().StringVar(&category, "category", "", "exact category, empty for all")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "lowest price, inclusive")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "highest price, inclusive")
	cmd.Flags().StringVar(&sortBy, "sort-by", string(domain.SortByName), "name|price-low|price-high|rating")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&output, "output", "table", "output format: table|json")
	return cmd
}

func bound(v float64) *float64 {
	if v < 0 {
		return nil
	}
	return &v
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the catalog again",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := catalog.FetchAll(cmd.Context()); err != nil {
				return fetchFailed(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d products\n", len(catalog.State().Products))
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			if len(catalog.State().Products) == 0 {
				if err := catalog.FetchAll(cmd.Context()); err != nil {
					return fetchFailed(err)
				}
			}

			p, err := catalog.Product(id)
			if err != nil {
				if domain.IsProductNotFoundError(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Product Not Found: the product you're looking for doesn't exist.")
					fmt.Fprintln(cmd.ErrOrStderr(), "Run `list` to go back to products.")
					return nil
				}
				return err
			}
			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			renderProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "text", "output format: text|json")
	return cmd
}

func newCreateCmd() *cobra.Command {
	var draft domain.ProductDraft
	var refresh bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := catalog.CreateOne(cmd.Context(), draft)
			if err != nil {
				var ve *domain.ValidationError
				if errors.As(err, &ve) {
					renderFieldErrors(cmd.ErrOrStderr(), ve.Fields)
					return errors.New("product not created")
				}
				// server rejections are reported under the category field
				renderFieldErrors(cmd.ErrOrStderr(), map[string]string{"category": err.Error()})
				return errors.New("product not created")
			}

			if err := writeJSON(cmd.OutOrStdout(), p); err != nil {
				return err
			}
			if refresh {
				if err := catalog.FetchAll(cmd.Context()); err != nil {
					return fetchFailed(err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&draft.Title, "title", "", "title (required)")
	cmd.Flags().Float64Var(&draft.Price, "price", 0, "price, greater than 0")
	cmd.Flags().StringVar(&draft.Description, "description", "", "description")
	cmd.Flags().StringVar(&draft.Category, "category", "", "category (required)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the catalog again after creating")
	return cmd
}

func newImportCmd() *cobra.Command {
	var file string
	var workers int

	cmd := &cobra.Command{
		Use:   "import --file <file>",
		Short: "Create products from a JSON array or NDJSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file required")
			}
			b, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			drafts, err := parseDrafts(b)
			if err != nil {
				return err
			}

			created, err := catalog.CreateMany(cmd.Context(), drafts, workers)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d products\n", len(created), len(drafts))
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "input file")
	cmd.Flags().IntVar(&workers, "workers", store.DefaultImportWorkers, "concurrent create calls")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories of the loaded catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureLoaded(cmd.Context()); err != nil && len(catalog.State().Products) == 0 {
				return fetchFailed(err)
			}
			for _, c := range catalog.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func newPriceRangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price-range",
		Short: "Show the lowest and highest price in the loaded catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureLoaded(cmd.Context()); err != nil && len(catalog.State().Products) == 0 {
				return fetchFailed(err)
			}
			b := catalog.PriceBounds()
			fmt.Fprintf(cmd.OutOrStdout(), "$%.2f - $%.2f\n", b.Min, b.Max)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderStatus(cmd.OutOrStdout(), catalog.State(), breaker)
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset every filter and return to page 1",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog.ClearFilters()
			fmt.Fprintln(cmd.OutOrStdout(), "filters cleared")
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var file string
	var all bool

	cmd := &cobra.Command{
		Use:   "export --file <file>",
		Short: "Export the filtered products to JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file required")
			}
			if err := ensureLoaded(cmd.Context()); err != nil && len(catalog.State().Products) == 0 {
				return fetchFailed(err)
			}
			out := catalog.Results()
			if all {
				out = catalog.State().Products
			}
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(file, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d products to %s\n", len(out), file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "output file")
	cmd.Flags().BoolVar(&all, "all", false, "export the raw catalog, ignoring filters")
	return cmd
}

// Execute runs the root command and reports any error on stderr.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}
