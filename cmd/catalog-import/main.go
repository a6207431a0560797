package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/younes-dz/consolestore/internal/apiclient"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000
	maxNameLen    = 120
)

// feedRecord is one product line in a gzipped JSONL catalog feed.
type feedRecord struct {
	Name        string
	Brand       string
	Description string
	Price       decimal.Decimal
	PromoPrice  decimal.Decimal
	Promo       bool
	Stock       int
	Category    string
	Condition   string
}

func (r feedRecord) key() string {
	return strings.ToLower(r.Brand) + "|" + strings.ToLower(r.Name)
}

func (r feedRecord) validate() error {
	switch {
	case r.Name == "" || len(r.Name) > maxNameLen:
		return errors.New("bad name")
	case r.Price.IsNegative() || r.Price.IsZero():
		return errors.New("non-positive price")
	case r.Stock < 0:
		return errors.New("negative stock")
	case r.Promo && !r.PromoPrice.IsPositive():
		return errors.New("promo without promo price")
	default:
		return nil
	}
}

func main() {
	var (
		dataDir string
		baseURL string
		dryRun  bool
	)

	flag.StringVar(&dataDir, "data-dir", "feeds", "directory containing *.jsonl.gz catalog feeds")
	flag.StringVar(&baseURL, "api-url", "", "store API base URL (or STORE_API_BASE_URL env)")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and dedupe without uploading")
	flag.Parse()

	if baseURL == "" {
		baseURL = os.Getenv("STORE_API_BASE_URL")
	}
	if baseURL == "" {
		slog.Error("API base URL is required: set --api-url or STORE_API_BASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, baseURL, dryRun); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, baseURL string, dryRun bool) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feeds")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz feeds in %s", dataDir)
	}

	client, err := apiclient.New(baseURL)
	if err != nil {
		return errors.Wrap(err, "create API client")
	}

	if !dryRun {
		user := os.Getenv("STORE_ADMIN_USER")
		pass := os.Getenv("STORE_ADMIN_PASSWORD")
		if user == "" || pass == "" {
			return errors.New("STORE_ADMIN_USER and STORE_ADMIN_PASSWORD are required")
		}
		if err := client.Login(ctx, apiclient.Credentials{Username: user, Password: pass}); err != nil {
			return errors.Wrap(err, "admin login")
		}
	}

	// Seed the dedupe filter with products already in the catalog so
	// re-running an import never creates duplicates.
	slog.Info("seeding dedupe filter from existing catalog")

	seen, err := seedFilter(ctx, client)
	if err != nil {
		return errors.Wrap(err, "seed dedupe filter")
	}

	imp := &importer{
		client: client,
		seen:   seen,
		dryRun: dryRun,
	}

	slog.Info("importing feeds", slog.Int("files", len(files)))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(imp.importFile(gctx, i, f))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("import summary",
		slog.Uint64("created", imp.created),
		slog.Uint64("skipped", imp.skipped),
		slog.Uint64("invalid", imp.invalid),
	)
	return nil
}

// seedFilter walks the existing product catalog and records every
// brand|name key in a bloom filter.
func seedFilter(ctx context.Context, client *apiclient.Client) (*bloom.BloomFilter, error) {
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	products, err := client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		filter.AddString(strings.ToLower(p.Brand) + "|" + strings.ToLower(p.Name))
	}

	slog.Info("dedupe filter seeded", slog.Int("existing_products", len(products)))
	return filter, nil
}

type importer struct {
	client *apiclient.Client
	dryRun bool

	mu   sync.Mutex
	seen *bloom.BloomFilter

	created uint64
	skipped uint64
	invalid uint64
}

// claim marks a key as seen and reports whether it was new.
func (imp *importer) claim(key string) bool {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if imp.seen.TestString(key) {
		return false
	}
	imp.seen.AddString(key)
	return true
}

func (imp *importer) importFile(ctx context.Context, idx int, path string) func() error {
	return func() error {
		var count uint64

		err := streamFeed(ctx, path, func(line []byte) error {
			count++
			if count%progressEvery == 0 {
				slog.Info("import progress",
					slog.Int("file", idx+1),
					slog.Uint64("records", count),
				)
			}

			rec, err := decodeRecord(line)
			if err != nil {
				slog.Warn("skipping malformed record",
					slog.Int("file", idx+1),
					slog.Uint64("line", count),
					slog.String("error", err.Error()),
				)
				imp.bump(&imp.invalid)
				return nil
			}
			if err := rec.validate(); err != nil {
				slog.Warn("skipping invalid record",
					slog.Int("file", idx+1),
					slog.String("name", rec.Name),
					slog.String("error", err.Error()),
				)
				imp.bump(&imp.invalid)
				return nil
			}

			if !imp.claim(rec.key()) {
				imp.bump(&imp.skipped)
				return nil
			}

			if imp.dryRun {
				imp.bump(&imp.created)
				return nil
			}

			if err := imp.client.CreateProduct(ctx, formFromRecord(rec), nil); err != nil {
				return errors.Wrapf(err, "create product %q", rec.Name)
			}
			imp.bump(&imp.created)
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "import feed %s", path)
		}

		slog.Info("feed complete", slog.Int("file", idx+1), slog.Uint64("records", count))
		return nil
	}
}

func (imp *importer) bump(counter *uint64) {
	imp.mu.Lock()
	*counter++
	imp.mu.Unlock()
}

func formFromRecord(rec feedRecord) apiclient.ProductForm {
	return apiclient.ProductForm{
		Name:        rec.Name,
		Brand:       rec.Brand,
		Description: rec.Description,
		Price:       rec.Price,
		PromoPrice:  rec.PromoPrice,
		Promo:       rec.Promo,
		Stock:       rec.Stock,
		Category:    rec.Category,
		Condition:   rec.Condition,
	}
}

// streamFeed opens a gzip-compressed JSONL file and calls fn for each line.
func streamFeed(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

func decodeRecord(line []byte) (feedRecord, error) {
	var rec feedRecord
	d := jx.DecodeBytes(line)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			rec.Name = v
			return err
		case "brand":
			v, err := d.Str()
			rec.Brand = v
			return err
		case "description":
			v, err := d.Str()
			rec.Description = v
			return err
		case "price":
			return decodeDecimal(d, &rec.Price)
		case "promo_price":
			return decodeDecimal(d, &rec.PromoPrice)
		case "promo":
			v, err := d.Bool()
			rec.Promo = v
			return err
		case "stock":
			v, err := d.Int()
			rec.Stock = v
			return err
		case "category":
			v, err := d.Str()
			rec.Category = v
			return err
		case "condition":
			v, err := d.Str()
			rec.Condition = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return feedRecord{}, err
	}
	return rec, nil
}

// decodeDecimal accepts both JSON numbers and numeric strings, since
// feeds from different suppliers disagree on how to encode prices.
func decodeDecimal(d *jx.Decoder, out *decimal.Decimal) error {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		*out = v
		return nil
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(n.String())
		if err != nil {
			return err
		}
		*out = v
		return nil
	default:
		return errors.New("expected number or string")
	}
}
