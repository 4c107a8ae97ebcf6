package recovery

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

// Document is the input shared by every strategy. Path is the PDF written
// inside Workspace, a scratch directory owned by the caller.
type Document struct {
	Data      []byte
	Path      string
	Workspace string
}

// Strategy recovers text from a document in one specific way.
type Strategy interface {
	Source() Source
	Extract(ctx context.Context, doc Document) (string, error)
}

// EmbeddedStrategy reads the PDF text layer. pdfcpu validates the document
// and ledongthuc/pdf decodes each page through its font encodings.
type EmbeddedStrategy struct{}

func (EmbeddedStrategy) Source() Source { return SourceEmbedded }

func (EmbeddedStrategy) Extract(ctx context.Context, doc Document) (text string, err error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(bytes.NewReader(doc.Data), conf)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return "", fmt.Errorf("validate pdf: %w", err)
	}

	// The text decoder panics on some malformed font dictionaries.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("decode pdf text: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", fmt.Errorf("open pdf text layer: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for nr := 1; nr <= reader.NumPage(); nr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(nr)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d text: %w", nr, err)
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\f"), nil
}

// LayoutStrategy dumps the layout-preserving text of every page with pdftotext.
type LayoutStrategy struct {
	runner Runner
	bin    string
}

// NewLayoutStrategy returns a LayoutStrategy running the configured pdftotext.
func NewLayoutStrategy(runner Runner, cfg *Config) *LayoutStrategy {
	return &LayoutStrategy{runner: runner, bin: cfg.Pdftotext}
}

func (s *LayoutStrategy) Source() Source { return SourceLayout }

func (s *LayoutStrategy) Extract(ctx context.Context, doc Document) (string, error) {
	out, stderr, err := s.runner.Run(ctx, s.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", doc.Path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, truncate(string(stderr), 512))
	}
	return string(out), nil
}

// OCRStrategy rasterizes each page, cleans the image with a fixed
// preprocessing chain and runs OCR on it. Pages are processed concurrently
// up to the configured worker count.
type OCRStrategy struct {
	runner Runner
	cfg    Config
	logger *slog.Logger
}

// NewOCRStrategy returns an OCRStrategy using the configured tools.
func NewOCRStrategy(runner Runner, cfg *Config, logger *slog.Logger) *OCRStrategy {
	return &OCRStrategy{
		runner: runner,
		cfg:    *cfg,
		logger: logger.With("strategy", string(SourceOCR)),
	}
}

func (s *OCRStrategy) Source() Source { return SourceOCR }

func (s *OCRStrategy) Extract(ctx context.Context, doc Document) (string, error) {
	dir := filepath.Join(doc.Workspace, "ocr")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create ocr dir: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	_, stderr, err := s.runner.Run(ctx, s.cfg.Pdftoppm, "-r", strconv.Itoa(s.cfg.DPI), "-png", doc.Path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(stderr), 512))
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", fmt.Errorf("list rendered pages: %w", err)
	}
	sort.Strings(pages)
	if s.cfg.MaxPages > 0 && len(pages) > s.cfg.MaxPages {
		pages = pages[:s.cfg.MaxPages]
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("pdftoppm rendered no pages")
	}

	texts := make([]string, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(s.cfg.Workers, len(pages)), 1))

	for i, page := range pages {
		g.Go(func() error {
			text, err := s.page(gctx, page)
			if err != nil {
				s.logger.WarnContext(gctx, "page ocr failed", "page", i+1, "error", err)
				return nil
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return strings.Join(texts, "\f"), nil
}

// page runs the preprocessing chain and OCR on one rendered page. When the
// preprocessing chain fails the raw rendering is recognized instead.
func (s *OCRStrategy) page(ctx context.Context, img string) (string, error) {
	prepared := strings.TrimSuffix(img, ".png") + "-prep.png"

	_, _, err := s.runner.Run(ctx, s.cfg.Magick, img,
		"-deskew", "40%",
		"-colorspace", "Gray",
		"-contrast-stretch", "1%x1%",
		"-sharpen", "0x1",
		"-threshold", s.cfg.Threshold,
		prepared,
	)
	if err != nil {
		s.logger.WarnContext(ctx, "image preprocessing failed, using raw page", "image", filepath.Base(img), "error", err)
		prepared = img
	}

	out, stderr, err := s.runner.Run(ctx, s.cfg.Tesseract, prepared, "stdout",
		"-l", s.cfg.Language,
		"--psm", strconv.Itoa(s.cfg.PSM),
	)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(stderr), 512))
	}

	return string(out), nil
}
