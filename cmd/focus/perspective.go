package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fentz26/focus/internal/models"
	"github.com/fentz26/focus/internal/perspective"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var perspectiveCmd = &cobra.Command{
	Use:     "perspective",
	Aliases: []string{"p"},
	Short:   "Manage perspectives",
}

var perspectiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and saved perspectives",
	RunE:  runPerspectiveList,
}

var perspectiveShowCmd = &cobra.Command{
	Use:   "show [perspective]",
	Short: "Show a perspective definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runPerspectiveShow,
}

var perspectiveAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new perspective",
	Long: `Save a new perspective. Conditions are given as field:operator[:value], e.g.

  focus perspective add --name "Errands" --where context:equals:@town --where due:within_days:7 --group due`,
	RunE: runPerspectiveAdd,
}

var perspectiveDeleteCmd = &cobra.Command{
	Use:   "delete [perspective]",
	Short: "Delete a saved perspective",
	Args:  cobra.ExactArgs(1),
	RunE:  runPerspectiveDelete,
}

var perspectiveExportCmd = &cobra.Command{
	Use:   "export [perspective...]",
	Short: "Export saved perspectives and boards as YAML",
	RunE:  runPerspectiveExport,
}

var perspectiveImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import perspectives and boards from a YAML export",
	Args:  cobra.ExactArgs(1),
	RunE:  runPerspectiveImport,
}

var (
	pName          string
	pIcon          string
	pColor         string
	pWhere         []string
	pAny           bool
	pSort          string
	pDesc          bool
	pGroup         string
	pShowCompleted bool
	pShowDeferred  bool
	pOutput        string
)

func init() {
	perspectiveCmd.AddCommand(perspectiveListCmd, perspectiveShowCmd, perspectiveAddCmd,
		perspectiveDeleteCmd, perspectiveExportCmd, perspectiveImportCmd)

	f := perspectiveAddCmd.Flags()
	f.StringVar(&pName, "name", "", "Perspective name (required)")
	f.StringVar(&pIcon, "icon", "", "Icon name")
	f.StringVar(&pColor, "color", "", "Color")
	f.StringArrayVar(&pWhere, "where", nil, "Condition field:operator[:value] (repeatable)")
	f.BoolVar(&pAny, "any", false, "Match any condition instead of all")
	f.StringVar(&pSort, "sort", string(models.SortCreated), "Sort field: title, due, priority, created, modified, project, context")
	f.BoolVar(&pDesc, "desc", false, "Sort descending")
	f.StringVar(&pGroup, "group", string(models.GroupNone), "Group by: none, status, priority, project, context, due")
	f.BoolVar(&pShowCompleted, "show-completed", false, "Include completed tasks")
	f.BoolVar(&pShowDeferred, "show-deferred", false, "Include tasks deferred to the future")
	perspectiveAddCmd.MarkFlagRequired("name")

	perspectiveExportCmd.Flags().StringVarP(&pOutput, "output", "o", "", "Write to file instead of stdout")
}

func runPerspectiveList(cmd *cobra.Command, args []string) error {
	var list []models.Perspective
	if err := apiGet("/perspectives", &list); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSORT\tGROUP")
	for _, p := range list {
		id := p.ID
		if !p.IsBuiltIn {
			id = truncateID(id)
		}
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n", id, p.Name, p.Sort.Field, p.Sort.Direction, p.Group)
	}
	w.Flush()
	return nil
}

func runPerspectiveShow(cmd *cobra.Command, args []string) error {
	p, err := resolvePerspective(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:     %s\n", p.ID)
	fmt.Printf("Name:   %s\n", p.Name)
	if p.IsBuiltIn {
		fmt.Printf("Rule:   built-in (%s)\n", p.Predicate)
	} else {
		fmt.Printf("Match:  %s\n", describeLogic(p.Filter.Logic))
		for _, c := range p.Filter.Conditions {
			fmt.Printf("        %s\n", formatCondition(c))
		}
	}
	fmt.Printf("Sort:   %s %s\n", p.Sort.Field, p.Sort.Direction)
	fmt.Printf("Group:  %s\n", p.Group)
	fmt.Printf("Shows completed: %t, deferred: %t\n", p.ShowCompleted, p.ShowDeferred)
	return nil
}

func runPerspectiveAdd(cmd *cobra.Command, args []string) error {
	p, err := buildPerspective()
	if err != nil {
		return err
	}

	var created models.Perspective
	if err := apiPost("/perspectives", p, &created); err != nil {
		return err
	}

	fmt.Printf("Created perspective: %s\n", created.ID)
	return nil
}

func buildPerspective() (models.Perspective, error) {
	p := models.Perspective{
		Name:          pName,
		Icon:          pIcon,
		Color:         pColor,
		Filter:        models.FilterSet{Logic: models.LogicAnd, Conditions: []models.FilterCondition{}},
		Sort:          models.SortKey{Field: models.SortField(pSort), Direction: models.Ascending},
		Group:         models.GroupKey(pGroup),
		ShowCompleted: pShowCompleted,
		ShowDeferred:  pShowDeferred,
	}
	if pAny {
		p.Filter.Logic = models.LogicOr
	}
	if pDesc {
		p.Sort.Direction = models.Descending
	}
	for _, raw := range pWhere {
		c, err := parseWhere(raw)
		if err != nil {
			return p, err
		}
		p.Filter.Conditions = append(p.Filter.Conditions, c)
	}
	return p, perspective.Validate(p)
}

// parseWhere parses field:operator[:value]. The value may itself contain
// colons. within_days takes its day count as the value.
func parseWhere(raw string) (models.FilterCondition, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 {
		return models.FilterCondition{}, fmt.Errorf("condition %q must be field:operator[:value]", raw)
	}

	c := models.FilterCondition{
		Field:    models.Field(strings.ToLower(parts[0])),
		Operator: models.Operator(strings.ToLower(parts[1])),
	}
	if len(parts) == 3 {
		c.Value = parts[2]
	}
	if c.Operator == models.OpWithinDays {
		days, err := strconv.Atoi(c.Value)
		if err != nil {
			return c, fmt.Errorf("condition %q: within_days needs a day count", raw)
		}
		c.Days = days
		c.Value = ""
	}
	if !perspective.IsValidPair(c.Field, c.Operator) {
		return c, fmt.Errorf("condition %q: operator %s does not apply to %s (valid: %s)",
			raw, c.Operator, c.Field, joinOperators(perspective.ValidOperators(c.Field)))
	}
	return c, nil
}

func formatCondition(c models.FilterCondition) string {
	switch {
	case c.Operator == models.OpWithinDays:
		return fmt.Sprintf("%s:%s:%d", c.Field, c.Operator, c.Days)
	case c.Value != "":
		return fmt.Sprintf("%s:%s:%s", c.Field, c.Operator, c.Value)
	}
	return fmt.Sprintf("%s:%s", c.Field, c.Operator)
}

func joinOperators(ops []models.Operator) string {
	if len(ops) == 0 {
		return "none"
	}
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}

func describeLogic(l models.Logic) string {
	if l == models.LogicOr {
		return "any of"
	}
	return "all of"
}

func runPerspectiveDelete(cmd *cobra.Command, args []string) error {
	p, err := resolvePerspective(args[0])
	if err != nil {
		return err
	}
	if err := apiDelete("/perspectives/" + url.PathEscape(p.ID)); err != nil {
		return err
	}

	fmt.Printf("Deleted perspective %s\n", p.Name)
	return nil
}

// --- Import / Export ---

// exportDoc is the YAML document written by export and read by import.
type exportDoc struct {
	Perspectives []models.Perspective `yaml:"perspectives"`
	Boards       []models.Board       `yaml:"boards,omitempty"`
}

func runPerspectiveExport(cmd *cobra.Command, args []string) error {
	var list []models.Perspective
	if err := apiGet("/perspectives", &list); err != nil {
		return err
	}
	var boards []models.Board
	if err := apiGet("/boards", &boards); err != nil {
		return err
	}

	doc := exportDoc{Boards: boards}
	if len(args) == 0 {
		for _, p := range list {
			if !p.IsBuiltIn {
				doc.Perspectives = append(doc.Perspectives, p)
			}
		}
	} else {
		doc.Boards = nil
		for _, arg := range args {
			p, err := resolvePerspective(arg)
			if err != nil {
				return err
			}
			if p.IsBuiltIn {
				return fmt.Errorf("%s is built-in and cannot be exported", p.Name)
			}
			doc.Perspectives = append(doc.Perspectives, *p)
		}
	}

	out := io.Writer(os.Stdout)
	if pOutput != "" {
		f, err := os.Create(pOutput)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return writeExport(out, doc)
}

func writeExport(w io.Writer, doc exportDoc) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return enc.Close()
}

func readExport(r io.Reader) (exportDoc, error) {
	var doc exportDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return doc, fmt.Errorf("decode export: %w", err)
	}
	for i, p := range doc.Perspectives {
		if perspective.IsBuiltInID(p.ID) {
			return doc, fmt.Errorf("perspective %d: %s is a built-in id", i+1, p.ID)
		}
		if err := perspective.Validate(p); err != nil {
			return doc, fmt.Errorf("perspective %d: %w", i+1, err)
		}
	}
	return doc, nil
}

func runPerspectiveImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	doc, err := readExport(f)
	if err != nil {
		return err
	}

	for _, p := range doc.Perspectives {
		path := "/perspectives/" + url.PathEscape(p.ID)
		var existing models.Perspective
		if p.ID != "" && apiGet(path, &existing) == nil {
			if err := apiPut(path, p, nil); err != nil {
				return fmt.Errorf("update %s: %w", p.Name, err)
			}
			fmt.Printf("Updated perspective %s\n", p.Name)
			continue
		}
		if err := apiPost("/perspectives", p, nil); err != nil {
			return fmt.Errorf("create %s: %w", p.Name, err)
		}
		fmt.Printf("Imported perspective %s\n", p.Name)
	}

	for _, b := range doc.Boards {
		var existing models.Board
		if b.ID != "" && apiGet("/boards/"+url.PathEscape(b.ID), &existing) == nil {
			fmt.Printf("Skipped existing board %s\n", b.Name)
			continue
		}
		if err := apiPost("/boards", b, nil); err != nil {
			return fmt.Errorf("create board %s: %w", b.Name, err)
		}
		fmt.Printf("Imported board %s\n", b.Name)
	}
	return nil
}
