package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jessevdk/go-flags"
	"github.com/lestrrat-go/xmlentity"
	"github.com/lestrrat-go/xmlentity/internal/cliutil"
	"golang.org/x/sync/errgroup"
)

type cmdopts struct {
	Config            string   `long:"config" description:"TOML configuration file"`
	DumpConfig        bool     `long:"dump-config" description:"print the effective configuration and exit"`
	AccessExternalDTD string   `long:"access-external-dtd" description:"allowed protocols: all, none, or a list such as file,https"`
	ExpansionLimit    int      `long:"expansion-limit" default:"-1" description:"maximum number of entity expansions, 0 for none"`
	Catalogs          []string `long:"catalog" description:"XML catalog file (repeatable)"`
	CatalogResolve    string   `long:"catalog-resolve" description:"strict, continue or ignore"`
	Encoding          string   `long:"encoding" description:"encoding to use instead of detection"`
	Entities          []string `long:"entity" description:"declare NAME=SYSTEMID (repeatable)"`
	Expand            []string `long:"expand" description:"entity to expand and print (repeatable)"`
	Jobs              int      `long:"jobs" description:"number of documents probed at once"`
	Verbose           bool     `long:"verbose" description:"log entity events to stderr"`
	Version           bool     `long:"version"`
}

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("xmlentity-probe: using xmlentity version %s\n", xmlentity.Version)
}

func showUsage() {
	fmt.Printf(`Usage : xmlentity-probe [options] XMLfiles ...
	Open the XML files as document entities, report the encoding
	decision and print the text of the requested entities
	--config FILE : read settings from a TOML file
	--catalog FILE : resolve through an XML catalog
	--entity NAME=SYSTEMID : declare an external entity
	--expand NAME : expand an entity and print its text
	--version : display the version of the library used
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		showVersion()
		return 0
	}

	cfg := defaultConfig()
	if opts.Config != "" {
		if err := loadConfig(cfg, opts.Config); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	if opts.DumpConfig {
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		return 0
	}

	ctx := context.Background()
	if opts.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		ctx = xmlentity.WithTraceLogger(ctx, logger)
	}

	switch {
	case len(args) > 0: // filename present
	case !cliutil.IsTty(os.Stdin.Fd()):
		out, err := probe(ctx, cfg, "", os.Stdin)
		os.Stdout.Write(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		return 0
	default:
		showUsage()
		return 1
	}

	// documents are probed concurrently, each with its own Manager, and
	// reported in command line order
	results := make([][]byte, len(args))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(max(cfg.Jobs, 1))
	for i, f := range args {
		grp.Go(func() error {
			out, err := probe(gctx, cfg, f, nil)
			results[i] = out
			return err
		})
	}
	err = grp.Wait()

	for _, out := range results {
		os.Stdout.Write(out)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	return 0
}

func managerOptions(cfg *config, reporter xmlentity.ErrorReporter) []xmlentity.Option {
	options := []xmlentity.Option{
		xmlentity.WithAccessExternalDTD(cfg.AccessExternalDTD),
		xmlentity.WithEntityExpansionLimit(cfg.ExpansionLimit),
		xmlentity.WithErrorReporter(reporter),
	}
	if len(cfg.Catalogs) > 0 {
		options = append(options,
			xmlentity.WithCatalogFiles(cfg.Catalogs...),
			xmlentity.WithCatalogPrefer(cfg.CatalogPrefer),
			xmlentity.WithCatalogResolve(cfg.CatalogResolve),
		)
	}
	return options
}

// probe opens one document. With a nil stream the document is read
// from filename through the entity manager's own opener.
func probe(ctx context.Context, cfg *config, filename string, stream io.Reader) ([]byte, error) {
	var out bytes.Buffer
	label := filename
	if label == "" {
		label = "-"
	}

	reporter := xmlentity.ErrorReporterFunc(func(_ context.Context, severity xmlentity.Severity, err error) error {
		fmt.Fprintf(&out, "%s: %s: %s\n", label, severity, err)
		if severity == xmlentity.SeverityWarning {
			return nil
		}
		return err
	})

	m := xmlentity.New(managerOptions(cfg, reporter)...)
	defer m.CloseReaders(ctx)

	res := m.StartDocumentEntity(ctx, &xmlentity.InputSource{
		SystemID:   filename,
		ByteStream: stream,
		Encoding:   cfg.Encoding,
	})
	if res.Status != xmlentity.StartStatusStarted {
		return out.Bytes(), fmt.Errorf("%s: failed to open document: %w", label, res.Err)
	}

	doc := res.Entity
	info := doc.EncodingInfo()
	fmt.Fprintf(&out, "%s: encoding=%s byte-order=%s bom=%t external=%t\n",
		label, doc.Encoding(), info.ByteOrder, info.HasBOM, doc.EncodingExternallySpecified())
	if decl := doc.XMLDecl(); decl != nil {
		fmt.Fprintf(&out, "%s: declaration version=%q encoding=%q standalone=%q\n",
			label, decl.Version, decl.Encoding, decl.Standalone)
	}

	names := make([]string, 0, len(cfg.Entities))
	for name := range cfg.Entities {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := m.DeclareExternal(ctx, name, "", cfg.Entities[name], ""); err != nil {
			return out.Bytes(), fmt.Errorf("%s: %w", label, err)
		}
	}

	for _, name := range cfg.Expand {
		res := m.StartEntity(ctx, true, name, false)
		switch res.Status {
		case xmlentity.StartStatusSkipped:
			fmt.Fprintf(&out, "%s: &%s; skipped\n", label, name)
		case xmlentity.StartStatusFatal:
			return out.Bytes(), fmt.Errorf("%s: failed to expand %q: %w", label, name, res.Err)
		case xmlentity.StartStatusStarted:
			text, err := io.ReadAll(res.Entity)
			if err != nil {
				return out.Bytes(), fmt.Errorf("%s: failed to read %q: %w", label, name, err)
			}
			id := res.Entity.Identifier()
			fmt.Fprintf(&out, "%s: &%s; from %s (%s)\n", label, name, id.ExpandedSystemID, res.Entity.Encoding())
			out.WriteString(strings.TrimRight(string(text), "\n"))
			out.WriteString("\n")
			if err := m.EndEntity(ctx); err != nil {
				return out.Bytes(), fmt.Errorf("%s: %w", label, err)
			}
		}
	}

	if err := m.EndEntity(ctx); err != nil {
		return out.Bytes(), fmt.Errorf("%s: %w", label, err)
	}
	return out.Bytes(), nil
}
