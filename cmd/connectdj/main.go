// Package main provides the connectdj CLI application entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"connectdj/internal/catalog"
	"connectdj/internal/core"
	httpserver "connectdj/internal/http"
	"connectdj/internal/media"
	"connectdj/internal/store"
	"connectdj/internal/stream"
	"connectdj/pkg/text"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "connectdj",
	Short: "connectdj - Monstercat Connect catalog resolver and streamer",
	Long: `connectdj resolves releases, tracks and artists against the Monstercat
Connect catalog, reconciles them with external media metadata, and streams
the resolved audio as decoded PCM.`,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <query>",
	Short: "Resolve a release by title, artist or catalog identifier",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

var trackCmd = &cobra.Command{
	Use:   "track <query>",
	Short: "Resolve an individual track",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrack,
}

var artistCmd = &cobra.Command{
	Use:   "artist <query>",
	Short: "Resolve an artist and list their releases",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runArtist,
}

var playCmd = &cobra.Command{
	Use:   "play <query>",
	Short: "Resolve a release and stream its decoded audio",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlay,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent resolutions",
	RunE:  runHistory,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, console)")
	rootCmd.PersistentFlags().String("connect-base-url", core.DefaultConnectBaseURL, "Connect catalog API base URL")
	rootCmd.PersistentFlags().Int("connect-search-limit", core.DefaultSearchLimit, "fuzzy search result limit")
	rootCmd.PersistentFlags().String("media-ytdlp-path", "yt-dlp", "yt-dlp binary path")
	rootCmd.PersistentFlags().Int("media-workers", core.DefaultMediaWorkers, "media lookup worker pool size")
	rootCmd.PersistentFlags().Int("media-cache-size", core.DefaultMediaCacheSize, "media lookup cache size")
	rootCmd.PersistentFlags().String("stream-ffmpeg-path", "ffmpeg", "ffmpeg binary path")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "metrics server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "metrics server port")
	rootCmd.PersistentFlags().String("history-path", "./connectdj_history.db", "resolution history database path")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	playCmd.Flags().Bool("long", false, "resolve as a long-form release (podcast or mix)")
	playCmd.Flags().String("output", "", "write decoded PCM to a file instead of stdout")
	historyCmd.Flags().IntP("limit", "n", 10, "number of entries to show")

	rootCmd.AddCommand(resolveCmd, trackCmd, artistCmd, playCmd, historyCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("CONNECTDJ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(&config.Log)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	if v := viper.GetString("connect-base-url"); v != "" {
		cfg.Connect.BaseURL = v
	}
	if v := viper.GetInt("connect-search-limit"); v > 0 {
		cfg.Connect.SearchLimit = v
	}

	if v := viper.GetString("media-ytdlp-path"); v != "" {
		cfg.Media.YTDLPPath = v
	}
	if v := viper.GetInt("media-workers"); v > 0 {
		cfg.Media.Workers = v
	}
	if v := viper.GetInt("media-cache-size"); v > 0 {
		cfg.Media.CacheSize = v
	}

	if v := viper.GetString("stream-ffmpeg-path"); v != "" {
		cfg.Stream.FFmpegPath = v
	}

	if v := viper.GetString("server-host"); v != "" {
		cfg.Server.Host = v
	}
	if v := viper.GetInt("server-port"); v > 0 {
		cfg.Server.Port = v
	}

	if v := viper.GetString("history-path"); v != "" {
		cfg.Store.HistoryPath = v
	}

	cfg.Log.Level = viper.GetString("log-level")
	if v := viper.GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}

	return cfg
}

func buildLogger(logCfg *core.LogConfig) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(logCfg.Level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if logCfg.Format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	// Playback writes PCM on stdout, so logs stay on stderr.
	cfg.OutputPaths = []string{"stderr"}

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func newCatalogClient(metrics core.Metrics) *catalog.Client {
	return catalog.NewClient(&config.Connect, logger.Named("catalog"), metrics)
}

func openHistory() (*store.History, error) {
	return store.OpenHistory(config.Store.HistoryPath, logger.Named("store"))
}

func recordResolution(ctx context.Context, history *store.History, query string, release *core.Release) {
	res := &store.Resolution{
		Query:     query,
		ReleaseID: release.ID,
		CatalogID: release.CatalogID,
		Class:     catalog.Classify(release.CatalogID).String(),
		Title:     release.Title,
		Artists:   release.Artists,
	}
	if err := history.Record(ctx, res); err != nil {
		logger.Warn("Failed to record resolution", zap.Error(err))
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	query := strings.Join(args, " ")
	client := newCatalogClient(core.NopMetrics{})

	history, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer history.Close()

	release, tracks, err := client.GetRelease(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", query, err)
	}

	recordResolution(ctx, history, query, release)

	fmt.Printf("%s - %s\n", release.Artists, release.Title)
	fmt.Printf("  Catalog:  %s (%s)\n", release.CatalogID, catalog.Classify(release.CatalogID))
	fmt.Printf("  Type:     %s\n", release.Type)
	if !release.ReleaseDate.IsZero() {
		fmt.Printf("  Released: %s\n", release.ReleaseDate.Format("2006-01-02"))
	}
	for _, u := range release.URLs {
		fmt.Printf("  Link:     %s: %s\n", text.SiteName(u), u)
	}
	for i, t := range tracks {
		fmt.Printf("  %2d. %s - %s [%s]\n", i+1, t.Artists, t.Title, text.FormatDuration(int(t.Duration)))
	}
	if len(tracks) > 1 {
		total, avgBPM := releaseTotals(tracks)
		fmt.Printf("  Duration: %s", text.FormatDuration(total))
		if avgBPM > 0 {
			fmt.Printf("  Avg BPM: %d", avgBPM)
		}
		fmt.Println()
	}

	return nil
}

// releaseTotals sums the track durations and averages the BPM across a
// release's track list.
func releaseTotals(tracks []core.Track) (totalSeconds, avgBPM int) {
	var duration, bpm float64
	for _, t := range tracks {
		duration += t.Duration
		bpm += t.BPM
	}
	if len(tracks) > 0 {
		avgBPM = int(math.Round(bpm / float64(len(tracks))))
	}

	return int(math.Round(duration)), avgBPM
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	query := strings.Join(args, " ")
	client := newCatalogClient(core.NopMetrics{})

	track, err := client.GetTrack(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to resolve track %q: %w", query, err)
	}

	fmt.Printf("%s - %s\n", track.Artists, track.Title)
	if g := track.PrimaryGenre(); g != "" {
		fmt.Printf("  Genre:    %s\n", g)
	}
	if track.BPM > 0 {
		fmt.Printf("  BPM:      %.0f\n", track.BPM)
	}
	fmt.Printf("  Duration: %s\n", text.FormatDuration(int(track.Duration)))
	if hash := track.StreamHash(); hash != "" {
		fmt.Printf("  Stream:   %s\n", stream.StreamURL(hash))
	}

	return nil
}

func runArtist(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	query := strings.Join(args, " ")
	client := newCatalogClient(core.NopMetrics{})

	artist, releases, err := client.GetArtist(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to resolve artist %q: %w", query, err)
	}

	fmt.Printf("%s\n", artist.Name)
	if artist.About != "" {
		fmt.Printf("  About:    %s\n", artist.About)
	}
	if years := artist.ReleaseYears(); len(years) > 0 {
		fmt.Printf("  Active:   %v\n", years)
	}
	if artist.ProfileImageURL != "" {
		fmt.Printf("  Image:    %s\n", artist.ProfileImageURL)
	}
	if b := artist.BookingContact(); b != "" {
		fmt.Printf("  Booking:  %s\n", b)
	}
	if m := artist.ManagementContact(); m != "" {
		fmt.Printf("  Management: %s\n", m)
	}
	for _, u := range artist.URLs {
		fmt.Printf("  Link:     %s: %s\n", text.SiteName(u), u)
	}
	fmt.Printf("  Releases: %d\n", len(releases))
	for _, r := range releases {
		fmt.Printf("    %-10s %s\n", r.CatalogID, r.Title)
	}

	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	history, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer history.Close()

	entries, err := history.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No resolutions recorded yet.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-10s %s - %s (for %q)\n",
			e.ResolvedAt.Local().Format("2006-01-02 15:04"),
			e.CatalogID, e.Artists, e.Title, e.Query)
	}

	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	query := strings.Join(args, " ")

	longForm, err := cmd.Flags().GetBool("long")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	logger.Info("Starting playback session",
		zap.String("query", query),
		zap.Bool("long_form", longForm))

	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))
	metrics := httpServer.GetMetrics()

	client := newCatalogClient(metrics)
	lookup := media.NewLookup(&config.Media, logger.Named("media"), metrics)

	history, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer history.Close()

	deps := stream.Deps{
		Catalog:    client,
		Media:      lookup,
		Logger:     logger.Named("stream"),
		FFmpegPath: config.Stream.FFmpegPath,
	}

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		defer cancel()
		return playSession(gCtx, query, longForm, deps, out, metrics, history)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Playback session stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Playback session finished")
	return nil
}

func playSession(ctx context.Context, query string, longForm bool, deps stream.Deps, out io.Writer, metrics *httpserver.Metrics, history *store.History) error {
	kind := "single"
	var source core.StreamSource
	if longForm {
		kind = "long"
		source = stream.NewLongSource(query, deps)
	} else {
		source = stream.NewSingleSource(query, deps)
	}
	defer source.Cleanup()

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	if err := source.GetInfo(ctx); err != nil {
		metrics.RecordSession(kind, "resolve_error")

		var wrongType *core.WrongSourceTypeError
		if errors.As(err, &wrongType) {
			return fmt.Errorf("release needs a %s session: %w", wrongType.Want, err)
		}
		return fmt.Errorf("failed to resolve %q: %w", query, err)
	}

	info := source.Describe()
	logger.Info("Resolved playback source",
		zap.String("title", info.Title),
		zap.String("artists", info.Artists),
		zap.String("catalog_id", info.CatalogID),
		zap.Int("duration", info.Duration),
		zap.Int("segments", len(info.Segments)))

	if err := history.Record(ctx, &store.Resolution{
		Query:     query,
		ReleaseID: info.ReleaseID,
		CatalogID: info.CatalogID,
		Class:     catalog.Classify(info.CatalogID).String(),
		Title:     info.Title,
		Artists:   info.Artists,
	}); err != nil {
		logger.Warn("Failed to record resolution", zap.Error(err))
	}

	if err := source.Load(ctx); err != nil {
		metrics.RecordSession(kind, "load_error")
		return fmt.Errorf("failed to load audio: %w", err)
	}

	if long, ok := source.(*stream.LongSource); ok {
		long.AnnounceSegments(ctx, func(seg core.Segment) {
			logger.Info("Now playing segment",
				zap.String("label", seg.Label),
				zap.String("at", text.FormatDuration(seg.Start)))
		})
	}

	started := time.Now()
	var written int64
	for {
		select {
		case <-ctx.Done():
			metrics.RecordSession(kind, "cancelled")
			return ctx.Err()
		default:
		}

		frame, err := source.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.RecordSession(kind, "read_error")
			return fmt.Errorf("failed to read audio: %w", err)
		}

		if _, err := out.Write(frame); err != nil {
			metrics.RecordSession(kind, "write_error")
			return fmt.Errorf("failed to write audio: %w", err)
		}
		written += int64(len(frame))
	}

	metrics.RecordSession(kind, "completed")
	logger.Info("Playback complete",
		zap.Int64("bytes", written),
		zap.Duration("elapsed", time.Since(started)))

	return nil
}
