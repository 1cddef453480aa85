package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/model"
)

// Kind names one of the three exports.
type Kind string

// Export kinds.
const (
	KindLeads     Kind = "leads"
	KindReferrals Kind = "referrals"
	KindSold      Kind = "sold"
)

// Kinds lists the exports in load order.
func Kinds() []Kind {
	return []Kind{KindLeads, KindReferrals, KindSold}
}

// Paths locates the exports. Only Leads is required.
type Paths struct {
	Leads     string `mapstructure:"leads"`
	Referrals string `mapstructure:"referrals"`
	Sold      string `mapstructure:"sold"`
}

// Get returns the path for kind.
func (p Paths) Get(kind Kind) string {
	switch kind {
	case KindLeads:
		return p.Leads
	case KindReferrals:
		return p.Referrals
	case KindSold:
		return p.Sold
	default:
		return ""
	}
}

// Count returns how many exports are configured.
func (p Paths) Count() int {
	n := 0
	for _, k := range Kinds() {
		if strings.TrimSpace(p.Get(k)) != "" {
			n++
		}
	}
	return n
}

// Data is the decoded content of the three exports.
type Data struct {
	Leads     []model.Row
	Referrals []model.Row
	Sold      []model.Row
}

func (d *Data) set(kind Kind, rows []model.Row) {
	switch kind {
	case KindLeads:
		d.Leads = rows
	case KindReferrals:
		d.Referrals = rows
	case KindSold:
		d.Sold = rows
	}
}

// Options configures Load.
type Options struct {
	Logger *slog.Logger
	// OnLoaded is called once per decoded export. It may be called from
	// several goroutines at once.
	OnLoaded func(kind Kind, rows int)
}

// Load reads every configured export concurrently and returns once all of
// them have decoded. Any failure fails the whole load.
func Load(ctx context.Context, paths Paths, opts Options) (Data, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if strings.TrimSpace(paths.Leads) == "" {
		return Data{}, common.NewUserError("Please select a leads file", common.ErrMissingLeads)
	}

	kinds := Kinds()
	decoded := make([][]model.Row, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		path := strings.TrimSpace(paths.Get(kind))
		if path == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := readFile(path)
			if err != nil {
				return fmt.Errorf("load %s file %s: %w", kind, path, err)
			}
			decoded[i] = rows
			logger.Debug("export loaded", "kind", string(kind), "path", path, "rows", len(rows))
			if opts.OnLoaded != nil {
				opts.OnLoaded(kind, len(rows))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Data{}, err
	}

	var data Data
	for i, kind := range kinds {
		data.set(kind, decoded[i])
	}
	logger.Info("exports loaded",
		"leads", len(data.Leads),
		"referrals", len(data.Referrals),
		"sold", len(data.Sold))

	return data, nil
}

func readFile(path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrParseInput, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close export", "path", path, "error", cerr)
		}
	}()
	return ReadRows(f)
}
