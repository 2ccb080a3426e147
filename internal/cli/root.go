// Package cli implements the peaks command line interface.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/couchcryptid/srtm-peaks/internal/adapter/srtm"
	"github.com/couchcryptid/srtm-peaks/internal/config"
	"github.com/couchcryptid/srtm-peaks/internal/domain"
	"github.com/couchcryptid/srtm-peaks/internal/peaks"
)

// Version is reported by --version; set at build time with -ldflags.
var Version = "dev"

const longHelp = `Uses SRTM data to find peaks.

BOUNDS (at least one, each may be given more than once):
  --bounds1 minLat,minLng,maxLat,maxLng   the area to cover, by its corners
  --bounds2 lat,lng,sizeKm                the area to cover, by its center and box size
  --bounds3 URL                           the area to cover, from a slippy map link
                                          (#map=zoom/lat/lng, ?lat=&lon=&zoom= or ?bbox=)

Regions are processed in the order given. A single region may span at most
about 6x6 degrees; a larger one stops the run. The classic space separated form
("-bounds1 47.1 11.1 47.9 11.9 -corrxy 0.001 0.002 -howmany 10") is accepted too.

Every setting below can also come from a PEAKS_* environment variable
(e.g. PEAKS_SRTM_DIR) or from the file given with --config.`

// runState holds what the bounds and correction flags collect while parsing.
type runState struct {
	bounds domain.BoundsList
	corr   domain.Correction
}

// Execute runs the peaks command with args (without the program name).
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	args, err := RewriteLegacyArgs(args)
	if err != nil {
		return err
	}
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Log output and errors go to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	state := &runState{}

	root := &cobra.Command{
		Use:          "peaks --bounds1|--bounds2|--bounds3 ... [options]",
		Short:        "Find peaks in SRTM elevation data",
		Long:         longHelp,
		Version:      Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}
			return runPeaks(cmd.Context(), cmd, state, errOut)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.String(config.KeyConfigFile, "", "read settings from this file (yaml, json, toml, ...)")
	pf.StringP(config.KeySRTMDir, "d", "srtm", "SRTM directory holding the index and the tile cache")
	pf.String(config.KeySource, srtm.DefaultSource, "base URL of the SRTM3 mirror (http or https)")
	pf.Duration(config.KeyHTTPTimeout, 60*time.Second, "timeout of a single mirror request")
	pf.String(config.KeyLogLevel, "info", "log level: debug, info, warn, error")
	pf.String(config.KeyLogFormat, "text", "log format: text or json")

	f := root.Flags()
	f.Var(newBoundsValue(domain.KindCorners, &state.bounds), domain.KindCorners, "area to cover, by corners (repeatable)")
	f.Var(newBoundsValue(domain.KindCenterRadius, &state.bounds), domain.KindCenterRadius, "area to cover, by center and box size in km (repeatable)")
	f.Var(newBoundsValue(domain.KindMapLink, &state.bounds), domain.KindMapLink, "area to cover, by slippy map link (repeatable)")
	f.Var(&correctionValue{corr: &state.corr}, "corrxy", "correction subtracted from every region before querying elevation data")

	f.StringP(config.KeyOutput, "o", "peaks.kml", "output file")
	f.String(config.KeyFormat, "", "output format: kml or geojson (default from the output extension)")
	f.BoolP(config.KeyRegenerateIndex, "i", false, "force regeneration of the SRTM index file")
	f.Int(config.KeyHowMany, 0, "maximum number of peaks per region (default unlimited)")
	f.Float64(config.KeyMinSeparation, peaks.DefaultMinSeparation, "minimum distance in meters between two reported peaks")
	f.Int(config.KeyCacheTiles, srtm.DefaultCacheTiles, "decoded tiles kept in memory")
	f.Bool(config.KeyOffline, false, "use cached tiles only, never contact the mirror")
	f.StringSlice(config.KeyKafkaBrokers, nil, "publish peaks to these Kafka brokers")
	f.String(config.KeyKafkaTopic, "", "Kafka topic for published peaks")
	f.String(config.KeyRedisURL, "", "share downloaded tiles through this Redis server (redis://host:port/db)")
	f.Duration(config.KeyRedisTTL, 720*time.Hour, "expiry of tiles stored in Redis, 0 keeps them forever")
	f.String(config.KeyMetricsFile, "", "write Prometheus metrics to this file after the run")
	f.String(config.KeyMetricsAddr, "", "serve /healthz, /readyz, /progress and /metrics on this address during the run")
	f.Duration(config.KeyShutdownTimeout, 10*time.Second, "grace period for the metrics server to stop")

	root.AddCommand(newIndexCommand(errOut))
	return root
}

// loadConfig binds the command's flags to a fresh viper instance and loads
// the configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if _, ok := f.Value.(*boundsValue); ok {
			return
		}
		if _, ok := f.Value.(*correctionValue); ok {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}
	return config.Load(v)
}
