package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	qbt "github.com/jfxdev/go-qbt-add"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	opts    addOptions
)

// addOptions mirrors every optional add setting; only flags the user changed are applied.
type addOptions struct {
	savePath           string
	cookie             string
	category           string
	tags               []string
	skipChecking       bool
	paused             bool
	rootFolder         bool
	rename             string
	upLimit            uint64
	dlLimit            uint64
	ratioLimit         float32
	seedingTimeLimit   uint32
	autoTMM            bool
	sequentialDownload bool
	firstLastPiecePrio bool
}

var rootCmd = &cobra.Command{
	Use:   "qbt-add [flags] SOURCE...",
	Short: "Add magnet links, URLs and .torrent files to qBittorrent",
	Long: `qbt-add submits a batch of torrents to qBittorrent's Web API.
Arguments starting with magnet:, http://, https:// or bc:// are sent as URLs,
anything else is read as a local .torrent file and uploaded.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAdd,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (QBT_* environment variables are always read)")

	f := rootCmd.Flags()
	f.StringVar(&opts.savePath, "savepath", "", "download folder")
	f.StringVar(&opts.cookie, "cookie", "", "cookie sent to download .torrent URLs")
	f.StringVar(&opts.category, "category", "", "category for the torrents")
	f.StringSliceVar(&opts.tags, "tags", nil, "tags for the torrents")
	f.BoolVar(&opts.skipChecking, "skip-checking", false, "skip hash checking")
	f.BoolVar(&opts.paused, "paused", false, "add torrents paused")
	f.BoolVar(&opts.rootFolder, "root-folder", false, "create the root folder (unset unless given)")
	f.StringVar(&opts.rename, "rename", "", "rename the torrent")
	f.Uint64Var(&opts.upLimit, "up-limit", 0, "upload limit in bytes/second")
	f.Uint64Var(&opts.dlLimit, "dl-limit", 0, "download limit in bytes/second")
	f.Float32Var(&opts.ratioLimit, "ratio-limit", 0, "share ratio limit")
	f.Uint32Var(&opts.seedingTimeLimit, "seeding-time-limit", 0, "seeding time limit in minutes")
	f.BoolVar(&opts.autoTMM, "auto-tmm", false, "use automatic torrent management")
	f.BoolVar(&opts.sequentialDownload, "sequential", false, "download sequentially")
	f.BoolVar(&opts.firstLastPiecePrio, "first-last-piece-prio", false, "prioritize first and last pieces")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := qbt.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	d, err := buildDescriptor(cmd.Flags().Changed, args)
	if err != nil {
		return err
	}

	logger := qbt.NewLogger(cfg)
	client, err := qbt.New(cfg, qbt.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("logout failed")
		}
	}()

	if err := client.AddTorrents(ctx, d); err != nil {
		return fmt.Errorf("failed to add torrents: %w", err)
	}

	logger.Info().
		Int("urls", len(d.URLs())).
		Int("files", len(d.Paths())).
		Msg("torrents added")
	return nil
}

// buildDescriptor turns arguments and the flags that were set into a descriptor.
func buildDescriptor(set func(name string) bool, args []string) (*qbt.AddDescriptor, error) {
	sources := make([]qbt.Source, 0, len(args))
	for _, arg := range args {
		sources = append(sources, qbt.ParseSource(arg))
	}

	b := qbt.NewAddDescriptorBuilder(sources...)

	if set("savepath") {
		b.SavePath(opts.savePath)
	}
	if set("cookie") {
		b.Cookie(opts.cookie)
	}
	if set("category") {
		b.Category(opts.category)
	}
	if set("tags") {
		b.Tags(opts.tags...)
	}
	if set("skip-checking") {
		b.SkipChecking(opts.skipChecking)
	}
	if set("paused") {
		b.Paused(opts.paused)
	}
	if set("root-folder") {
		b.RootFolder(opts.rootFolder)
	}
	if set("rename") {
		b.Rename(opts.rename)
	}
	if set("up-limit") {
		b.UpLimit(opts.upLimit)
	}
	if set("dl-limit") {
		b.DlLimit(opts.dlLimit)
	}
	if set("ratio-limit") {
		b.RatioLimit(opts.ratioLimit)
	}
	if set("seeding-time-limit") {
		b.SeedingTimeLimit(opts.seedingTimeLimit)
	}
	if set("auto-tmm") {
		b.AutoTMM(opts.autoTMM)
	}
	if set("sequential") {
		b.SequentialDownload(opts.sequentialDownload)
	}
	if set("first-last-piece-prio") {
		b.FirstLastPiecePrio(opts.firstLastPiecePrio)
	}

	return b.Build()
}
