// Command sjonq runs a one-shot query against a JSON document.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sjonq/sjonq-go/sjonq"
)

var (
	flagFile     string
	flagCharset  string
	flagSep      string
	flagFrom     string
	flagWhere    []string
	flagSelect   []string
	flagDrop     []string
	flagDistinct string
	flagSortBy   string
	flagDesc     bool
	flagGroupBy  string
	flagOffset   int
	flagLimit    int

	flagCount bool
	flagFirst bool
	flagLast  bool
	flagNth   int
	flagPluck string
	flagSum   string
	flagMin   string
	flagMax   string
	flagAvg   string
)

func rootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "sjonq",
		Short: "Query, filter and reshape a JSON document",
		Long: `Query, filter and reshape a JSON document with a fluent pipeline.

Each --where flag is one AND-combined clause group in "key:op:value,key:op:value"
form; repeating --where OR-combines the groups. Values parse as JSON, falling
back to plain strings.

Examples:
  sjonq -f users.json --from users --where "age:=:30" --select "name,city"
  sjonq -f shop.json --from items --where "name:contains:pro" --where "on_sale:=:true" --count`,
		RunE: run,
	}
	c.Flags().StringVarP(&flagFile, "file", "f", "", "JSON document to query (required)")
	c.Flags().StringVar(&flagCharset, "charset", "", "document text encoding (IANA name, default UTF-8)")
	c.Flags().StringVar(&flagSep, "sep", ".", "node path separator")
	c.Flags().StringVar(&flagFrom, "from", "", "node path to focus on before querying")
	c.Flags().StringArrayVar(&flagWhere, "where", nil, "clause group, \"key:op:value\" comma-separated")
	c.Flags().StringSliceVar(&flagSelect, "select", nil, "attributes to project (\"path as alias\" allowed)")
	c.Flags().StringSliceVar(&flagDrop, "drop", nil, "node paths to drop from the result")
	c.Flags().StringVar(&flagDistinct, "distinct", "", "attribute to de-duplicate by")
	c.Flags().StringVar(&flagSortBy, "sort-by", "", "attribute to sort elements by")
	c.Flags().BoolVar(&flagDesc, "desc", false, "sort descending")
	c.Flags().StringVar(&flagGroupBy, "group-by", "", "attribute to group elements by")
	c.Flags().IntVar(&flagOffset, "offset", 0, "elements to skip")
	c.Flags().IntVar(&flagLimit, "limit", 0, "maximum elements to return")

	c.Flags().BoolVar(&flagCount, "count", false, "print the element count")
	c.Flags().BoolVar(&flagFirst, "first", false, "print the first element")
	c.Flags().BoolVar(&flagLast, "last", false, "print the last element")
	c.Flags().IntVar(&flagNth, "nth", 0, "print the element at this index (negative counts from the end)")
	c.Flags().StringVar(&flagPluck, "pluck", "", "print this attribute from every element")
	c.Flags().StringVar(&flagSum, "sum", "", "sum this numeric property (\".\" for scalar sequences)")
	c.Flags().StringVar(&flagMin, "min", "", "minimum of this numeric property")
	c.Flags().StringVar(&flagMax, "max", "", "maximum of this numeric property")
	c.Flags().StringVar(&flagAvg, "avg", "", "average of this numeric property")

	_ = c.MarkFlagRequired("file")
	return c
}

func run(cmd *cobra.Command, _ []string) error {
	q, err := sjonq.File(flagFile, flagCharset, sjonq.WithSeparator(flagSep))
	if err != nil {
		return err
	}

	if flagFrom != "" {
		q.From(flagFrom)
	}
	for gi, group := range flagWhere {
		if err := addGroup(q, gi, group); err != nil {
			return err
		}
	}
	if len(flagSelect) > 0 {
		q.Select(flagSelect...)
	}
	if flagDistinct != "" {
		q.Distinct(flagDistinct)
	}
	if flagOffset != 0 {
		q.Offset(flagOffset)
	}
	if flagLimit != 0 {
		q.Limit(flagLimit)
	}
	if len(flagDrop) > 0 {
		q.Drop(flagDrop...)
	}

	result, err := materialize(cmd, q)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func materialize(cmd *cobra.Command, q *sjonq.JSONQuery) (interface{}, error) {
	switch {
	case flagCount:
		return q.Count()
	case flagFirst:
		return q.First()
	case flagLast:
		return q.Last()
	case cmd.Flags().Changed("nth"):
		return q.Nth(flagNth)
	case flagPluck != "":
		return q.Pluck(flagPluck)
	case flagSum != "":
		return q.Sum(aggregateProperties(flagSum)...)
	case flagMin != "":
		return q.Min(aggregateProperties(flagMin)...)
	case flagMax != "":
		return q.Max(aggregateProperties(flagMax)...)
	case flagAvg != "":
		return q.Avg(aggregateProperties(flagAvg)...)
	}
	if flagSortBy != "" {
		q.SortBy(flagSortBy, flagDesc)
	}
	if flagGroupBy != "" {
		q.GroupBy(flagGroupBy)
	}
	return q.Get()
}

// aggregateProperties maps the "." convention (aggregate a sequence of
// scalars) to an empty property list.
func aggregateProperties(property string) []string {
	if property == "." {
		return nil
	}
	return []string{property}
}

func addGroup(q *sjonq.JSONQuery, index int, group string) error {
	for ci, spec := range strings.Split(group, ",") {
		parts := strings.SplitN(strings.TrimSpace(spec), ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("invalid clause %q, want key:op:value", spec)
		}
		key, op, value := parts[0], parts[1], parseOperand(parts[2])
		if index > 0 && ci == 0 {
			q.OrWhere(key, op, value)
		} else {
			q.Where(key, op, value)
		}
	}
	return nil
}

// parseOperand decodes a clause value as JSON so numbers, booleans, null
// and arrays come through typed; anything else stays a plain string.
func parseOperand(raw string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
