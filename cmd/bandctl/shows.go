package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/band-manager/internal/config"
	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/repository"
)

// showRecord is one entry of an import file.
type showRecord struct {
	Title            string  `yaml:"title"`
	City             string  `yaml:"city"`
	ShowType         string  `yaml:"showType"`
	OrganizationName *string `yaml:"organizationName"`
	PublicShowFor    *string `yaml:"publicShowFor"`
	TotalAmount      int64   `yaml:"totalAmount"`
	AdvancePayment   int64   `yaml:"advancePayment"`
	ShowDate         string  `yaml:"showDate"`
	Status           string  `yaml:"status"`
	IsPaid           bool    `yaml:"isPaid"`
	Notes            *string `yaml:"notes"`
	POCName          *string `yaml:"pocName"`
	POCPhone         *string `yaml:"pocPhone"`
	POCEmail         *string `yaml:"pocEmail"`
}

func trimmedPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func (r showRecord) show(loc *time.Location) (model.Show, error) {
	s := model.Show{
		Title:            strings.TrimSpace(r.Title),
		City:             strings.TrimSpace(r.City),
		ShowType:         model.CanonicalShowType(r.ShowType),
		OrganizationName: trimmedPtr(r.OrganizationName),
		PublicShowFor:    trimmedPtr(r.PublicShowFor),
		TotalAmount:      r.TotalAmount,
		AdvancePayment:   r.AdvancePayment,
		Status:           strings.ToLower(strings.TrimSpace(r.Status)),
		IsPaid:           r.IsPaid,
		Notes:            trimmedPtr(r.Notes),
		POCName:          trimmedPtr(r.POCName),
		POCPhone:         trimmedPtr(r.POCPhone),
		POCEmail:         trimmedPtr(r.POCEmail),
	}
	if s.Status == "" {
		s.Status = model.StatusUpcoming
	}
	if r.ShowDate != "" {
		t, ok := model.ParseShowDate(r.ShowDate, loc)
		if !ok {
			return s, fmt.Errorf("invalid showDate %q", r.ShowDate)
		}
		s.ShowDate = t
	}
	return s, s.Validate()
}

// parseShows decodes a YAML list of shows.  Every entry is validated and
// all problems are reported together; nothing is returned if any fails.
func parseShows(r io.Reader, loc *time.Location) ([]model.Show, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var records []showRecord
	if err := dec.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("import file is empty")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	var errs []error
	shows := make([]model.Show, 0, len(records))
	for i, rec := range records {
		s, err := rec.show(loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("show %d (%q): %w", i+1, rec.Title, err))
			continue
		}
		shows = append(shows, s)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return shows, nil
}

var importDryRun bool

var showsCmd = &cobra.Command{
	Use:   "shows",
	Short: "Bulk show operations",
}

var showsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import past or planned shows from a YAML list",
	Long: `Reads a YAML list of shows, for example:

  - title: Spring Fest
    city: Lahore
    showType: University
    organizationName: LUMS
    totalAmount: 500
    advancePayment: 100
    showDate: 2025-03-01T20:00
    status: completed
    isPaid: true

Dates without a zone are read in APP_TIMEZONE.  The whole file is
validated before anything is written, and the rows are inserted in one
transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if importDryRun {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			shows, err := parseShows(f, cfg.Location)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d shows valid, nothing written\n", len(shows))
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()
		cfg, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		shows, err := parseShows(f, cfg.Location)
		if err != nil {
			return err
		}
		if err := repository.NewShowRepo(db).CreateMany(ctx, shows); err != nil {
			return fmt.Errorf("import rolled back: %w", err)
		}
		for _, s := range shows {
			logger.Debug("show imported", zap.Uint64("show_id", s.ID))
		}
		invalidateCache(ctx)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d shows\n", len(shows))
		return err
	},
}

func init() {
	showsImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate only")
	showsCmd.AddCommand(showsImportCmd)
}
