package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"successplan/internal/app"
	"successplan/internal/domain"
)

func planCmd() *cobra.Command {
	plan := &cobra.Command{Use: "plan", Short: "Show and edit the success plan"}
	plan.AddCommand(planShowCmd())
	plan.AddCommand(planSetCmd())
	plan.AddCommand(planHealthCmd())
	plan.AddCommand(planResetCmd())
	return plan
}

func planShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the plan summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				p := st.Plan()
				if p == nil {
					return app.ErrNoPlan
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				printPlan(p)
				return nil
			})
		},
	}
}

func printPlan(p *domain.SuccessPlan) {
	tw := newTable(table.Row{"Field", "Value"})
	tw.AppendRows([]table.Row{
		{"Customer", p.CustomerName},
		{"Fiscal year", p.FiscalYear},
		{"Owner", p.Owner.Name},
		{"Segment", p.Segment},
		{"Industry", p.Industry},
		{"Health", p.Health.Label()},
		{"Next review", p.NextReview},
		{"Last updated", p.LastUpdated},
		{"Last exported", p.LastExported},
		{"Objectives", fmt.Sprintf("%d active, %d completed", len(p.Objectives), len(p.CompletedObjectives))},
		{"Stakeholders", len(p.Stakeholders)},
		{"Risks", len(p.Risks)},
		{"Activation rate", p.ValueRealized.ActivationRate.Value},
		{"Time to value", p.ValueRealized.TimeToValue.Value},
		{"Products", strings.Join(p.ProductsInScope, ", ")},
	})
	tw.Render()
	if p.MissionSummary != "" {
		fmt.Println("Mission:", p.MissionSummary)
	}
	for i, step := range p.NextSteps {
		fmt.Printf("Next step %d: %s\n", i+1, step)
	}
}

func planSetCmd() *cobra.Command {
	var customer, fy, segment, industry, nextReview, mission, ownerID, ownerName string
	var products, nextSteps []string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update plan fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.PlanPatch
			flags := cmd.Flags()
			if flags.Changed("customer") {
				patch.CustomerName = &customer
			}
			if flags.Changed("fiscal-year") {
				patch.FiscalYear = &fy
			}
			if flags.Changed("segment") {
				patch.Segment = &segment
			}
			if flags.Changed("industry") {
				patch.Industry = &industry
			}
			if flags.Changed("next-review") {
				patch.NextReview = &nextReview
			}
			if flags.Changed("mission") {
				patch.MissionSummary = &mission
			}
			if flags.Changed("owner") {
				owner := domain.PersonRef{ID: ownerID, Name: ownerName, Initials: app.Initials(ownerName)}
				patch.Owner = &owner
			}
			if flags.Changed("product") {
				patch.ProductsInScope = products
			}
			if flags.Changed("next-step") {
				patch.NextSteps = nextSteps
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				p, err := st.PatchPlan(ctx, patch)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				printPlan(&p)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&fy, "fiscal-year", "", "fiscal year label, e.g. FY25")
	cmd.Flags().StringVar(&segment, "segment", "", "customer segment")
	cmd.Flags().StringVar(&industry, "industry", "", "industry")
	cmd.Flags().StringVar(&nextReview, "next-review", "", "next review date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&mission, "mission", "", "mission summary")
	cmd.Flags().StringVar(&ownerName, "owner", "", "plan owner name")
	cmd.Flags().StringVar(&ownerID, "owner-id", "", "plan owner id")
	cmd.Flags().StringArrayVar(&products, "product", nil, "product in scope (repeatable, replaces the list)")
	cmd.Flags().StringArrayVar(&nextSteps, "next-step", nil, "next step (repeatable, replaces the list)")
	return cmd
}

func planHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health <on_track|needs_attention|at_risk>",
		Short: "Set plan health",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				p, err := st.SetHealth(ctx, domain.Status(args[0]))
				if err != nil {
					return err
				}
				fmt.Println("health:", p.Health.Label())
				return nil
			})
		},
	}
}

func planResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the plan with the sample plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				p, err := st.Reset(ctx)
				if err != nil {
					return err
				}
				fmt.Println("plan reset for", p.CustomerName)
				return nil
			})
		},
	}
}

func objectiveCmd() *cobra.Command {
	obj := &cobra.Command{Use: "objective", Short: "Manage objectives"}
	obj.AddCommand(objectiveListCmd())
	obj.AddCommand(objectiveAddCmd())
	obj.AddCommand(objectiveUpdateCmd())
	obj.AddCommand(objectiveProgressCmd())
	obj.AddCommand(objectiveCompleteCmd())
	obj.AddCommand(objectiveDeleteCmd())
	return obj
}

func objectiveListCmd() *cobra.Command {
	var f domain.ObjectiveFilter
	var status string
	var completed bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List objectives",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Status = domain.Status(status)
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				var items []domain.Objective
				if completed {
					p := st.Plan()
					if p == nil {
						return app.ErrNoPlan
					}
					items = p.CompletedObjectives
				} else {
					var err error
					if items, err = st.Objectives(f); err != nil {
						return err
					}
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable(table.Row{"ID", "Title", "Owner", "Due", "Status", "Progress", "KPIs"})
				for _, o := range items {
					kpis := make([]string, 0, len(o.KPIs))
					for _, k := range o.KPIs {
						kpis = append(kpis, k.Name+" "+k.Value)
					}
					state := o.Status.Label()
					if o.CompletedAt != "" {
						state = "completed " + o.CompletedAt
					}
					tw.AppendRow(table.Row{o.ID, o.Title, o.Owner.Name, o.DueDate, state, fmt.Sprintf("%d%%", o.Progress), strings.Join(kpis, ", ")})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "case-insensitive title search")
	cmd.Flags().StringVar(&f.Owner, "owner", "", "owner name filter")
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().BoolVar(&completed, "completed", false, "list completed objectives instead")
	return cmd
}

// parseKPIs reads name=value[:trend] pairs.
func parseKPIs(specs []string) ([]domain.KPI, error) {
	out := make([]domain.KPI, 0, len(specs))
	for i, s := range specs {
		name, value, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("kpi %q: want name=value[:trend]", s)
		}
		k := domain.KPI{ID: fmt.Sprint(i + 1), Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}
		if v, trend, ok := strings.Cut(k.Value, ":"); ok {
			k.Value, k.Trend = v, domain.Trend(trend)
			if !k.Trend.Valid() {
				return nil, fmt.Errorf("kpi %q: trend must be up, down or stable", s)
			}
		}
		out = append(out, k)
	}
	return out, nil
}

func personRef(name string) domain.PersonRef {
	return domain.PersonRef{ID: strings.ToLower(strings.Join(strings.Fields(name), "-")), Name: name, Initials: app.Initials(name)}
}

func objectiveAddCmd() *cobra.Command {
	var id, title, desc, owner, due, status string
	var progress int
	var kpis []string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an objective",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseKPIs(kpis)
			if err != nil {
				return err
			}
			o := domain.Objective{
				ID:          id,
				Title:       title,
				Description: desc,
				DueDate:     due,
				Status:      domain.Status(status),
				Progress:    progress,
				KPIs:        parsed,
			}
			if owner != "" {
				o.Owner = personRef(owner)
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				created, err := st.AddObjective(ctx, o)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(created)
				}
				fmt.Println("added objective", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "objective id (generated when empty)")
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	cmd.Flags().StringVar(&owner, "owner", "", "owner name")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "status (default on_track)")
	cmd.Flags().IntVar(&progress, "progress", 0, "progress 0-100")
	cmd.Flags().StringArrayVar(&kpis, "kpi", nil, "KPI as name=value[:trend] (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func objectiveUpdateCmd() *cobra.Command {
	var title, desc, owner, due, status string
	var progress int
	var kpis []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an active objective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.ObjectivePatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &desc
			}
			if flags.Changed("owner") {
				ref := personRef(owner)
				patch.Owner = &ref
			}
			if flags.Changed("due") {
				patch.DueDate = &due
			}
			if flags.Changed("status") {
				s := domain.Status(status)
				patch.Status = &s
			}
			if flags.Changed("progress") {
				patch.Progress = &progress
			}
			if flags.Changed("kpi") {
				parsed, err := parseKPIs(kpis)
				if err != nil {
					return err
				}
				patch.KPIs = parsed
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				o, err := st.UpdateObjective(ctx, args[0], patch)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(o)
				}
				fmt.Printf("updated objective %s (%d%%, %s)\n", o.ID, o.Progress, o.Status.Label())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	cmd.Flags().StringVar(&owner, "owner", "", "owner name")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "status")
	cmd.Flags().IntVar(&progress, "progress", 0, "progress 0-100")
	cmd.Flags().StringArrayVar(&kpis, "kpi", nil, "KPI as name=value[:trend] (repeatable, replaces the list)")
	return cmd
}

func objectiveProgressCmd() *cobra.Command {
	var step int
	cmd := &cobra.Command{
		Use:   "progress <id>",
		Short: "Move objective progress by a step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				o, err := st.AdvanceObjective(ctx, args[0], step)
				if err != nil {
					return err
				}
				fmt.Printf("objective %s at %d%%\n", o.ID, o.Progress)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&step, "step", 10, "percentage points to add (negative to lower)")
	return cmd
}

func objectiveCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Move an objective to completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				o, err := st.CompleteObjective(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(o)
				}
				fmt.Printf("completed objective %s at %s\n", o.ID, o.CompletedAt)
				return nil
			})
		},
	}
}

func objectiveDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an active objective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				return st.DeleteObjective(ctx, args[0])
			})
		},
	}
}

func stakeholderCmd() *cobra.Command {
	sh := &cobra.Command{Use: "stakeholder", Short: "Manage stakeholders"}
	sh.AddCommand(stakeholderListCmd())
	sh.AddCommand(stakeholderAddCmd())
	sh.AddCommand(stakeholderUpdateCmd())
	sh.AddCommand(stakeholderDeleteCmd())
	return sh
}

func stakeholderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stakeholders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				p := st.Plan()
				if p == nil {
					return app.ErrNoPlan
				}
				if viper.GetBool("json") {
					return printJSON(p.Stakeholders)
				}
				tw := newTable(table.Row{"ID", "Name", "Initials", "Role", "RACI"})
				for _, s := range p.Stakeholders {
					tw.AppendRow(table.Row{s.ID, s.Name, s.Initials, s.Role, s.RACI})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func stakeholderAddCmd() *cobra.Command {
	var s domain.Stakeholder
	var raci string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a stakeholder",
		RunE: func(cmd *cobra.Command, args []string) error {
			s.RACI = domain.RACI(strings.ToUpper(raci))
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				created, err := st.AddStakeholder(ctx, s)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(created)
				}
				fmt.Println("added stakeholder", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&s.ID, "id", "", "stakeholder id (generated when empty)")
	cmd.Flags().StringVar(&s.Name, "name", "", "name")
	cmd.Flags().StringVar(&s.Initials, "initials", "", "initials (derived from name when empty)")
	cmd.Flags().StringVar(&s.Role, "role", "", "role")
	cmd.Flags().StringVar(&raci, "raci", "", "R, A, C or I")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func stakeholderUpdateCmd() *cobra.Command {
	var name, initials, role, raci string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a stakeholder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.StakeholderPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("initials") {
				patch.Initials = &initials
			}
			if cmd.Flags().Changed("role") {
				patch.Role = &role
			}
			if cmd.Flags().Changed("raci") {
				r := domain.RACI(strings.ToUpper(raci))
				patch.RACI = &r
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				s, err := st.UpdateStakeholder(ctx, args[0], patch)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(s)
				}
				fmt.Println("updated stakeholder", s.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name")
	cmd.Flags().StringVar(&initials, "initials", "", "initials")
	cmd.Flags().StringVar(&role, "role", "", "role")
	cmd.Flags().StringVar(&raci, "raci", "", "R, A, C or I")
	return cmd
}

func stakeholderDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stakeholder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				return st.DeleteStakeholder(ctx, args[0])
			})
		},
	}
}

func riskCmd() *cobra.Command {
	r := &cobra.Command{Use: "risk", Short: "Manage risks"}
	r.AddCommand(riskListCmd())
	r.AddCommand(riskAddCmd())
	r.AddCommand(riskUpdateCmd())
	r.AddCommand(riskDeleteCmd())
	return r
}

func riskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List risks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				p := st.Plan()
				if p == nil {
					return app.ErrNoPlan
				}
				if viper.GetBool("json") {
					return printJSON(p.Risks)
				}
				tw := newTable(table.Row{"ID", "Title", "Impact", "Likelihood", "Owner", "Mitigation"})
				for _, r := range p.Risks {
					tw.AppendRow(table.Row{r.ID, r.Title, r.Impact, r.Likelihood, r.Owner, r.Mitigation})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func riskAddCmd() *cobra.Command {
	var r domain.Risk
	var impact, likelihood string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a risk",
		RunE: func(cmd *cobra.Command, args []string) error {
			r.Impact = domain.Level(impact)
			r.Likelihood = domain.Level(likelihood)
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				created, err := st.AddRisk(ctx, r)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(created)
				}
				fmt.Println("added risk", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&r.ID, "id", "", "risk id (generated when empty)")
	cmd.Flags().StringVar(&r.Title, "title", "", "title")
	cmd.Flags().StringVar(&r.Description, "description", "", "description")
	cmd.Flags().StringVar(&impact, "impact", "medium", "low, medium or high")
	cmd.Flags().StringVar(&likelihood, "likelihood", "medium", "low, medium or high")
	cmd.Flags().StringVar(&r.Mitigation, "mitigation", "", "mitigation plan")
	cmd.Flags().StringVar(&r.Owner, "owner", "", "owner name")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func riskUpdateCmd() *cobra.Command {
	var title, desc, impact, likelihood, mitigation, owner string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.RiskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &desc
			}
			if flags.Changed("impact") {
				l := domain.Level(impact)
				patch.Impact = &l
			}
			if flags.Changed("likelihood") {
				l := domain.Level(likelihood)
				patch.Likelihood = &l
			}
			if flags.Changed("mitigation") {
				patch.Mitigation = &mitigation
			}
			if flags.Changed("owner") {
				patch.Owner = &owner
			}
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				r, err := st.UpdateRisk(ctx, args[0], patch)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(r)
				}
				fmt.Println("updated risk", r.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	cmd.Flags().StringVar(&impact, "impact", "", "low, medium or high")
	cmd.Flags().StringVar(&likelihood, "likelihood", "", "low, medium or high")
	cmd.Flags().StringVar(&mitigation, "mitigation", "", "mitigation plan")
	cmd.Flags().StringVar(&owner, "owner", "", "owner name")
	return cmd
}

func riskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(ctx context.Context, st *app.State) error {
				return st.DeleteRisk(ctx, args[0])
			})
		},
	}
}
