package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"successplan/internal/app"
	"successplan/internal/codec"
	"successplan/internal/domain"
	"successplan/internal/report"
	"successplan/internal/report/render"
	"successplan/internal/share"
)

func exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the plan as a JSON or YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				data, name, err := st.Export(f)
				if err != nil {
					return err
				}
				if out == "-" {
					_, err := os.Stdout.Write(data)
					return err
				}
				path := name
				if out != "" {
					path = out
					if info, err := os.Stat(out); err == nil && info.IsDir() {
						path = filepath.Join(out, name)
					}
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				fmt.Println("wrote", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory; - for stdout")
	return cmd
}

func importCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the plan with an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f := codec.DetectFormat(args[0])
			if format != "" {
				if f, err = codec.ParseFormat(format); err != nil {
					return err
				}
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				p, err := st.Import(ctx, data, f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				fmt.Printf("imported plan for %s (%d objectives)\n", p.CustomerName, len(p.Objectives))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default: from file extension)")
	return cmd
}

func reportCmd() *cobra.Command {
	r := &cobra.Command{Use: "report", Short: "Preview and export stakeholder reports"}
	r.AddCommand(reportPreviewCmd())
	r.AddCommand(reportExportCmd())
	return r
}

type reportFlags struct {
	preset   string
	sections []string
	noRedact bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.preset, "preset", "", "QBR, EBR or Implementation (default from successplan.yml)")
	cmd.Flags().StringSliceVar(&f.sections, "sections", nil, "explicit section list, e.g. coverPage,objectives,risks")
	cmd.Flags().BoolVar(&f.noRedact, "no-redact", false, "keep internal notes (owners, mitigations, names)")
}

func (f *reportFlags) config() (domain.ReportConfig, error) {
	preset := f.preset
	if preset == "" {
		if cfg, err := resolveConfig(); err == nil {
			preset = cfg.Report.Preset
		}
	}
	cfg := report.DefaultConfig(domain.Preset(preset))
	if len(f.sections) > 0 {
		sections, err := parseSections(f.sections)
		if err != nil {
			return domain.ReportConfig{}, err
		}
		cfg.Sections = sections
	}
	if f.noRedact {
		cfg.RedactInternalNotes = false
	}
	return cfg, nil
}

func parseSections(names []string) (domain.ReportSections, error) {
	var s domain.ReportSections
	for _, n := range names {
		switch report.Section(strings.TrimSpace(n)) {
		case report.SectionCover:
			s.CoverPage = true
		case report.SectionExecutiveSummary:
			s.ExecutiveSummary = true
		case report.SectionObjectives:
			s.Objectives = true
		case report.SectionKPISnapshot:
			s.KPISnapshot = true
		case report.SectionTimeline:
			s.Timeline = true
		case report.SectionRisks:
			s.Risks = true
		case report.SectionNextSteps:
			s.NextSteps = true
		case report.SectionAppendix:
			s.Appendix = true
		default:
			return s, fmt.Errorf("unknown report section %q", n)
		}
	}
	return s, nil
}

func reportPreviewCmd() *cobra.Command {
	var rf reportFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print report content as text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.config()
			if err != nil {
				return err
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				blocks, err := st.Report(cfg)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(blocks)
				}
				return render.Text(os.Stdout, blocks)
			})
		},
	}
	rf.register(cmd)
	return cmd
}

func reportExportCmd() *cobra.Command {
	var rf reportFlags
	var dir string
	var text bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the report to PNG pages (or text) and record the export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.config()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				blocks, err := st.Report(cfg)
				if err != nil {
					return err
				}
				plan := st.Plan()
				var files []string
				if text {
					path := filepath.Join(dir, report.Filename(plan)+".txt")
					f, err := os.Create(path)
					if err != nil {
						return err
					}
					if err := render.Text(f, blocks); err != nil {
						f.Close()
						return err
					}
					if err := f.Close(); err != nil {
						return err
					}
					files = []string{path}
				} else if files, err = render.WritePages(dir, plan, blocks); err != nil {
					return err
				}
				preset := cfg.Preset
				if preset == "" {
					preset = domain.PresetQBR
				}
				if _, err := st.MarkExported(ctx, preset); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"files": files})
				}
				for _, f := range files {
					fmt.Println("wrote", f)
				}
				return nil
			})
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&text, "text", false, "write a text file instead of PNG pages")
	return cmd
}

func shareCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Issue a signed read-only link for 'sp serve'",
		Long:  "Needs share.secret in successplan.yml or SUCCESSPLAN_SHARE_SECRET.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			if baseURL == "" {
				baseURL = "http://" + cfg.Server.Addr + cfg.Server.BasePath
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				p := st.Plan()
				if p == nil {
					return app.ErrNoPlan
				}
				token, exp, err := shareIssuer(cfg).Issue(p.ID)
				if err != nil {
					return err
				}
				link := share.Link(baseURL, p.ID, token)
				if viper.GetBool("json") {
					return printJSON(map[string]any{"url": link, "token": token, "expiresAt": exp.UTC()})
				}
				fmt.Println(link)
				fmt.Println("expires", exp.UTC().Format("2006-01-02 15:04 MST"))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API URL including base path (default from server config)")
	return cmd
}
